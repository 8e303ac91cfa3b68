package scoring

import (
	"fmt"
	"math"
	"time"

	"stock_insight/pkg/core/fundamentals"
	"stock_insight/pkg/core/ratios"
	"stock_insight/pkg/core/series"
)

// Criterion names in checklist and weight-table order.
const (
	CritHistoricalTrend = "Historical Trend (20Y)"
	CritNetIncome       = "Net Income Increasing"
	CritOperatingIncome = "Operating Income Increasing"
	CritOperatingCF     = "Operating Cash Flow Increasing"
	CritRevenue         = "Revenue Increasing"
	CritGrossMargin     = "Gross Margin Stable/Increasing"
	CritNetMargin       = "Net Margin Stable/Increasing"
	CritROE             = "ROE > 12-15%"
	CritROIC            = "ROIC > 12-15%"
	CritRevenueVsAR     = "Revenue > AR or Growing Faster"
	CritCCC             = "CCC Stable/Reducing"
	CritMoat            = "Economic Moat"
	CritDebtEBITDA      = "Debt/EBITDA < 3"
	CritDebtServicing   = "Debt Servicing Ratio < 30%"
	CritCurrentRatio    = "Current Ratio > 1.5"
	CritGearing         = "Gearing Ratio < 45%"
)

// Criterion is a single checklist line with its pass/fail status and a
// display value.
type Criterion struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Value  string `json:"value"`
}

// ChecklistInputs gathers everything the checklist reads. History is
// chronological (oldest first); statement series are newest first.
type ChecklistInputs struct {
	HistoryDates  []time.Time
	HistoryCloses []float64
	Statements    fundamentals.StatementSeries
	GrossMargin   series.Series
	NetMargin     series.Series
	RevenueGrowth float64
	Ratios        ratios.TTM
	CCC           series.Series
	HasInventory  bool
	IsREIT        bool
	Now           time.Time
}

// Result is the evaluated checklist with its weighted roll-up.
type Result struct {
	Criteria []Criterion `json:"criteria"`
	Score    float64     `json:"score"`
	MaxScore float64     `json:"maxScore"`
	Moat     Moat        `json:"-"`
}

// Evaluate runs every applicable criterion and aggregates the weighted
// score. The weight table depends on the company profile: REITs swap in
// the gearing criterion, physical-goods companies the cash conversion
// cycle, everyone else the standard table.
func Evaluate(in ChecklistInputs) Result {
	var criteria []Criterion

	trendPass, trendVal := historicalTrend(in.HistoryDates, in.HistoryCloses, in.Now)
	criteria = append(criteria, Criterion{CritHistoricalTrend, passFail(trendPass), trendVal})

	// Net income with an operating income fallback: a company that grows
	// operating income while net income is noisy still earns the point.
	if CheckTrend(in.Statements.NetIncome, Increasing, 0.05) {
		criteria = append(criteria, Criterion{CritNetIncome, "Pass", "Pass"})
	} else if CheckTrend(in.Statements.OperatingIncome, Increasing, 0.05) {
		criteria = append(criteria, Criterion{CritOperatingIncome, "Pass", "Pass"})
	} else {
		criteria = append(criteria, Criterion{CritNetIncome, "Fail", "Fail"})
	}

	ocfPass := CheckTrend(in.Statements.OperatingCashFlow, Increasing, 0.05)
	criteria = append(criteria, Criterion{CritOperatingCF, passFail(ocfPass), passFail(ocfPass)})

	revPass := CheckTrend(in.Statements.Revenue, Increasing, 0.05)
	criteria = append(criteria, Criterion{CritRevenue, passFail(revPass), passFail(revPass)})

	gmPass := CheckTrend(in.GrossMargin, StableIncreasing, 0.1)
	criteria = append(criteria, Criterion{CritGrossMargin, passFail(gmPass), passFail(gmPass)})

	nmPass := CheckTrend(in.NetMargin, StableIncreasing, 0.1)
	criteria = append(criteria, Criterion{CritNetMargin, passFail(nmPass), passFail(nmPass)})

	roePass := in.Ratios.ROE >= 0.12
	criteria = append(criteria, Criterion{CritROE, passFail(roePass), fmt.Sprintf("%.2f%%", in.Ratios.ROE*100)})

	roicPass := in.Ratios.ROIC >= 0.12
	criteria = append(criteria, Criterion{CritROIC, passFail(roicPass), fmt.Sprintf("%.2f%%", in.Ratios.ROIC*100)})

	arPass := revenueVsReceivables(in.Statements.Revenue, in.Statements.AccountsReceivable)
	criteria = append(criteria, Criterion{CritRevenueVsAR, passFail(arPass), passFail(arPass)})

	if in.HasInventory && !in.CCC.IsEmpty() {
		cccPass := CheckTrend(in.CCC, ReducingStable, 0.1)
		criteria = append(criteria, Criterion{CritCCC, passFail(cccPass), fmt.Sprintf("%.0f days", in.CCC.NewestOrZero())})
	}

	moat := ComputeMoat(MoatInputs{
		GrossMarginPct: in.GrossMargin.NewestOrZero(),
		ROIC:           in.Ratios.ROIC,
		Revenue:        in.Statements.Revenue.NewestOrZero(),
		NetMarginPct:   in.NetMargin.NewestOrZero(),
		RevenueGrowth:  in.RevenueGrowth,
	})
	moatPass := moat.Type == "Wide" || moat.Type == "Narrow"
	criteria = append(criteria, Criterion{CritMoat, passFail(moatPass), fmt.Sprintf("%s (%g/5)", moat.Type, moat.Score)})

	dePass := in.Ratios.DebtToEBITDA < 3
	criteria = append(criteria, Criterion{CritDebtEBITDA, passFail(dePass), fmt.Sprintf("%.2f", in.Ratios.DebtToEBITDA)})

	dsrPass := in.Ratios.DebtServicingRatio < 30
	criteria = append(criteria, Criterion{CritDebtServicing, passFail(dsrPass), fmt.Sprintf("%.2f%%", in.Ratios.DebtServicingRatio)})

	crPass := in.Ratios.CurrentRatio > 1.5
	criteria = append(criteria, Criterion{CritCurrentRatio, passFail(crPass), fmt.Sprintf("%.2f", in.Ratios.CurrentRatio)})

	if in.IsREIT {
		grPass := in.Ratios.GearingRatio < 45
		criteria = append(criteria, Criterion{CritGearing, passFail(grPass), fmt.Sprintf("%.2f%%", in.Ratios.GearingRatio)})
	}

	weights := weightsFor(in.IsREIT, in.HasInventory)
	score, maxScore := aggregate(criteria, weights)

	return Result{Criteria: criteria, Score: score, MaxScore: maxScore, Moat: moat}
}

// historicalTrend classifies two decades of price action: downtrend and
// stagnant CAGR fail outright, a drawdown past 30% from the period high
// fails even with good CAGR.
func historicalTrend(dates []time.Time, closes []float64, now time.Time) (bool, string) {
	if len(dates) == 0 || len(dates) != len(closes) {
		return false, "N/A"
	}
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := now.AddDate(-20, 0, 0)

	var winDates []time.Time
	var winCloses []float64
	for i, d := range dates {
		if !d.Before(cutoff) {
			winDates = append(winDates, d)
			winCloses = append(winCloses, closes[i])
		}
	}
	if len(winCloses) == 0 {
		return false, "N/A"
	}

	start := winCloses[0]
	end := winCloses[len(winCloses)-1]
	maxClose := winCloses[0]
	for _, c := range winCloses {
		if c > maxClose {
			maxClose = c
		}
	}

	years := winDates[len(winDates)-1].Sub(winDates[0]).Hours() / 24 / 365.25
	cagr := 0.0
	if years > 1 && start > 0 {
		cagr = math.Pow(end/start, 1/years) - 1
	}
	drawdown := 0.0
	if maxClose > 0 {
		drawdown = (maxClose - end) / maxClose
	}

	switch {
	case cagr < 0:
		return false, fmt.Sprintf("Downtrend (CAGR %.1f%%)", cagr*100)
	case cagr < 0.05:
		return false, fmt.Sprintf("Stagnant (CAGR %.1f%%)", cagr*100)
	case drawdown > 0.30:
		return false, fmt.Sprintf("Declining (Down %.1f%% from High)", drawdown*100)
	default:
		return true, fmt.Sprintf("Increasing (CAGR %.1f%%)", cagr*100)
	}
}

// revenueVsReceivables passes when revenue exceeds receivables outright,
// or failing that, when revenue has grown faster over the window.
func revenueVsReceivables(revenue, receivables series.Series) bool {
	if revenue.IsEmpty() || receivables.IsEmpty() {
		return false
	}
	if revenue.NewestOrZero() > receivables.NewestOrZero() {
		return true
	}
	if revenue.Len() < 2 || receivables.Len() < 2 {
		return false
	}
	revOldest := revenue.OldestOrZero()
	arOldest := receivables.OldestOrZero()
	if revOldest == 0 || arOldest == 0 {
		return false
	}
	revGrowth := (revenue.NewestOrZero() - revOldest) / abs(revOldest)
	arGrowth := (receivables.NewestOrZero() - arOldest) / abs(arOldest)
	return revGrowth > arGrowth
}

func passFail(ok bool) string {
	if ok {
		return "Pass"
	}
	return "Fail"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
