// Package ratios computes the financial ratios shown in the stock report
// and consumed by the quality score. All headline ratios use trailing
// twelve month inputs.
package ratios

import (
	"math"

	"stock_insight/pkg/core/fundamentals"
	"stock_insight/pkg/core/series"
)

// DefaultTaxRate is used when pretax income is zero or missing.
const DefaultTaxRate = 0.21

// TTM holds the trailing twelve month ratio set. ROE, TaxRate and ROIC
// are fractions; DebtServicingRatio and GearingRatio are percentages.
type TTM struct {
	ROE                float64
	TaxRate            float64
	ROIC               float64
	DebtToEBITDA       float64
	DebtServicingRatio float64
	CurrentRatio       float64
	GearingRatio       float64
}

// Fallbacks carries provider-reported figures substituted when a
// statement input is unavailable.
type Fallbacks struct {
	ReturnOnEquity float64
	DebtToEBITDA   float64
}

// ComputeTTM derives the ratio set from TTM statement snapshots.
// Ratios whose denominator is zero fall back to the provider figure
// where one exists, else to zero.
func ComputeTTM(income, balance, cashflow fundamentals.Snapshot, fb Fallbacks) TTM {
	out := TTM{TaxRate: DefaultTaxRate}

	netIncome := income.Value("Net Income")
	equity := balance.Value("Stockholders Equity")
	if equity != 0 {
		out.ROE = netIncome / equity
	} else {
		out.ROE = fb.ReturnOnEquity
	}

	pretax := income.Value("Pretax Income")
	if pretax != 0 {
		out.TaxRate = income.Value("Tax Provision") / pretax
	}

	totalDebt := balance.Value("Total Debt")
	investedCapital := equity + totalDebt
	if investedCapital != 0 {
		out.ROIC = (income.Value("EBIT") * (1 - out.TaxRate)) / investedCapital
	}

	ebitda := income.Value("EBITDA")
	if ebitda != 0 {
		out.DebtToEBITDA = totalDebt / ebitda
	} else {
		out.DebtToEBITDA = fb.DebtToEBITDA
	}

	ocf := cashflow.Value("Operating Cash Flow")
	if ocf != 0 {
		out.DebtServicingRatio = math.Abs(income.Value("Interest Expense")) / ocf * 100
	}

	liabilities := balance.Value("Current Liabilities")
	if liabilities != 0 {
		out.CurrentRatio = balance.Value("Current Assets") / liabilities
	}

	if equity != 0 {
		out.GearingRatio = totalDebt / equity * 100
	}
	return out
}

// GrossMargin returns (revenue - cost of revenue) / revenue as a
// percentage series. The result is empty when either input is missing.
func GrossMargin(revenue, costOfRevenue series.Series) series.Series {
	return marginSeries(revenue, func(rev, cost float64) float64 {
		return (rev - cost) / rev * 100
	}, costOfRevenue)
}

// NetMargin returns net income / revenue as a percentage series.
func NetMargin(netIncome, revenue series.Series) series.Series {
	return marginSeries(revenue, func(rev, ni float64) float64 {
		return ni / rev * 100
	}, netIncome)
}

func marginSeries(revenue series.Series, f func(rev, other float64) float64, other series.Series) series.Series {
	if revenue.IsEmpty() || other.IsEmpty() {
		return series.Series{}
	}
	n := revenue.Len()
	if other.Len() < n {
		n = other.Len()
	}
	out := series.Series{
		Dates:  append([]string(nil), revenue.Dates[:n]...),
		Values: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		rev := revenue.Values[i]
		if math.IsNaN(rev) || rev == 0 || math.IsNaN(other.Values[i]) {
			out.Values[i] = math.NaN()
			continue
		}
		out.Values[i] = f(rev, other.Values[i])
	}
	return out
}
