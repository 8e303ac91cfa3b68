package scoring

import (
	"testing"
	"time"

	"stock_insight/pkg/core/fundamentals"
	"stock_insight/pkg/core/ratios"
	"stock_insight/pkg/core/series"

	"github.com/stretchr/testify/assert"
)

func newestFirst(vals ...float64) series.Series {
	return series.Series{Values: vals}
}

func TestCheckTrendIncreasing(t *testing.T) {
	assert.True(t, CheckTrend(newestFirst(120, 110, 100), Increasing, 0.05))
	assert.False(t, CheckTrend(newestFirst(80, 90, 100), Increasing, 0.05))
	// Flat endpoints and zero slope still pass the consecutive walk.
	assert.True(t, CheckTrend(newestFirst(100, 100, 100), Increasing, 0.05))
	// Endpoints fail but the regression line still rises.
	assert.True(t, CheckTrend(newestFirst(98, 90, 60, 100), Increasing, 0.05))
	assert.False(t, CheckTrend(newestFirst(100), Increasing, 0.05))
}

func TestCheckTrendStableIncreasing(t *testing.T) {
	// Within 10% of the oldest value counts as stable.
	assert.True(t, CheckTrend(newestFirst(37, 39, 40), StableIncreasing, 0.1))
	assert.False(t, CheckTrend(newestFirst(30, 39, 40), StableIncreasing, 0.1))
}

func TestCheckTrendReducingStable(t *testing.T) {
	assert.True(t, CheckTrend(newestFirst(80, 90, 100), ReducingStable, 0.1))
	assert.True(t, CheckTrend(newestFirst(105, 102, 100), ReducingStable, 0.1))
	assert.False(t, CheckTrend(newestFirst(150, 120, 100), ReducingStable, 0.1))
}

func TestComputeMoat(t *testing.T) {
	wide := ComputeMoat(MoatInputs{
		GrossMarginPct: 45,
		ROIC:           0.20,
		Revenue:        150e9,
		NetMarginPct:   25,
		RevenueGrowth:  0.20,
	})
	assert.Equal(t, 5.0, wide.Score)
	assert.Equal(t, "Wide", wide.Type)

	narrow := ComputeMoat(MoatInputs{
		GrossMarginPct: 25,
		ROIC:           0.12,
		Revenue:        20e9,
		NetMarginPct:   12,
		RevenueGrowth:  0.02,
	})
	assert.Equal(t, 2.0, narrow.Score)
	assert.Equal(t, "Narrow", narrow.Type)

	none := ComputeMoat(MoatInputs{GrossMarginPct: 10})
	assert.Equal(t, 0.0, none.Score)
	assert.Equal(t, "None", none.Type)
}

func TestHistoricalTrend(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{
		time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	pass, val := historicalTrend(dates, []float64{10, 100}, now)
	assert.True(t, pass)
	assert.Contains(t, val, "Increasing")

	pass, val = historicalTrend(dates, []float64{100, 10}, now)
	assert.False(t, pass)
	assert.Contains(t, val, "Downtrend")

	pass, val = historicalTrend(dates, []float64{100, 110}, now)
	assert.False(t, pass)
	assert.Contains(t, val, "Stagnant")

	// Strong CAGR but deep drawdown from the period high.
	dates3 := append(dates[:1:1], time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), dates[1])
	pass, val = historicalTrend(dates3, []float64{10, 200, 100}, now)
	assert.False(t, pass)
	assert.Contains(t, val, "Declining")

	pass, val = historicalTrend(nil, nil, now)
	assert.False(t, pass)
	assert.Equal(t, "N/A", val)
}

func allPassInputs() ChecklistInputs {
	return ChecklistInputs{
		HistoryDates: []time.Time{
			time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		HistoryCloses: []float64{10, 100},
		Statements: fundamentals.StatementSeries{
			Revenue:            newestFirst(1000, 800),
			NetIncome:          newestFirst(120, 100),
			OperatingCashFlow:  newestFirst(50, 40),
			AccountsReceivable: newestFirst(100, 90),
		},
		GrossMargin:   newestFirst(45, 44),
		NetMargin:     newestFirst(21, 20),
		RevenueGrowth: 0.25,
		Ratios: ratios.TTM{
			ROE:                0.20,
			ROIC:               0.20,
			DebtToEBITDA:       1.0,
			DebtServicingRatio: 5.0,
			CurrentRatio:       2.0,
		},
		Now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEvaluateStandardProfile(t *testing.T) {
	res := Evaluate(allPassInputs())

	for _, c := range res.Criteria {
		assert.Equal(t, "Pass", c.Status, c.Name)
	}
	assert.Equal(t, 110.0, res.MaxScore)
	assert.Equal(t, res.MaxScore, res.Score)

	names := criterionNames(res)
	assert.NotContains(t, names, CritCCC)
	assert.NotContains(t, names, CritGearing)
}

func TestEvaluatePhysicalGoodsProfile(t *testing.T) {
	in := allPassInputs()
	in.HasInventory = true
	in.CCC = newestFirst(70, 75, 80)

	res := Evaluate(in)

	names := criterionNames(res)
	assert.Contains(t, names, CritCCC)
	assert.Equal(t, 100.0, res.MaxScore)
	assert.Equal(t, res.MaxScore, res.Score)
}

func TestEvaluateREITProfile(t *testing.T) {
	in := allPassInputs()
	in.IsREIT = true
	in.Ratios.GearingRatio = 40

	res := Evaluate(in)

	names := criterionNames(res)
	assert.Contains(t, names, CritGearing)
	assert.Equal(t, 103.0, res.MaxScore)
	assert.Equal(t, res.MaxScore, res.Score)
}

func TestEvaluateOperatingIncomeFallback(t *testing.T) {
	in := allPassInputs()
	in.Statements.NetIncome = newestFirst(50, 100, 200)
	in.Statements.OperatingIncome = newestFirst(240, 220, 200)

	res := Evaluate(in)

	names := criterionNames(res)
	assert.Contains(t, names, CritOperatingIncome)
	assert.NotContains(t, names, CritNetIncome)
}

func criterionNames(res Result) []string {
	names := make([]string, 0, len(res.Criteria))
	for _, c := range res.Criteria {
		names = append(names, c.Name)
	}
	return names
}
