package ratios

import (
	"stock_insight/pkg/core/fundamentals"
	"stock_insight/pkg/core/series"
)

// InventoryNotApplicable explains an absent cash conversion cycle for
// companies without physical inventory.
const InventoryNotApplicable = "Company does not handle physical inventory"

// CashConversionCycle computes days inventory + days receivable - days
// payable for up to the five most recent annual periods. The cycle only
// applies to companies carrying positive inventory on the latest balance
// sheet; otherwise an empty series and a reason are returned.
func CashConversionCycle(financials, balanceSheet *series.Table, ttmBalance fundamentals.Snapshot) (series.Series, string) {
	if ttmBalance.Value("Inventory") <= 0 {
		return series.Series{}, InventoryNotApplicable
	}

	n := balanceSheet.NumPeriods()
	if n > 5 {
		n = 5
	}
	var out series.Series
	for i := 0; i < n; i++ {
		cogs := financials.ValueOrZero("Cost Of Revenue", i)
		revenue := financials.ValueOrZero("Total Revenue", i)
		if cogs <= 0 || revenue <= 0 {
			continue
		}
		daysInventory := balanceSheet.ValueOrZero("Inventory", i) / cogs * 365
		daysReceivable := balanceSheet.ValueOrZero("Accounts Receivable", i) / revenue * 365
		daysPayable := balanceSheet.ValueOrZero("Accounts Payable", i) / cogs * 365
		out.Dates = append(out.Dates, balanceSheet.Periods[i])
		out.Values = append(out.Values, daysInventory+daysReceivable-daysPayable)
	}
	return out, ""
}
