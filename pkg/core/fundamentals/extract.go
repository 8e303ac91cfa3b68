package fundamentals

import "stock_insight/pkg/core/series"

// StatementSeries bundles the named annual series the scoring and
// valuation layers read. Any member may be empty when the upstream row
// is missing.
type StatementSeries struct {
	Revenue            series.Series
	NetIncome          series.Series
	OperatingIncome    series.Series
	CostOfRevenue      series.Series
	InterestExpense    series.Series
	TaxProvision       series.Series
	PretaxIncome       series.Series
	OperatingCashFlow  series.Series
	AccountsReceivable series.Series
}

// ExtractAll pulls the standard row set out of the annual statement
// tables, applying the alias fallbacks the upstream provider is known to
// need.
func ExtractAll(financials, balanceSheet, cashflow *series.Table) StatementSeries {
	return StatementSeries{
		Revenue:            financials.Extract("Total Revenue"),
		NetIncome:          financials.Extract("Net Income"),
		OperatingIncome:    financials.Extract("Operating Income"),
		CostOfRevenue:      financials.Extract("Cost Of Revenue"),
		InterestExpense:    financials.Extract("Interest Expense"),
		TaxProvision:       financials.Extract("Tax Provision"),
		PretaxIncome:       financials.Extract("Pretax Income"),
		OperatingCashFlow:  cashflow.Extract("Operating Cash Flow", "Total Cash From Operating Activities"),
		AccountsReceivable: balanceSheet.Extract("Accounts Receivable", "Net Receivables"),
	}
}
