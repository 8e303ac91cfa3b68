package ratios

import (
	"math"
	"testing"

	"stock_insight/pkg/core/fundamentals"
	"stock_insight/pkg/core/series"

	"github.com/stretchr/testify/assert"
)

func TestComputeTTM(t *testing.T) {
	income := fundamentals.Snapshot{
		"Net Income":       200.0,
		"EBIT":             300.0,
		"Pretax Income":    250.0,
		"Tax Provision":    50.0,
		"EBITDA":           400.0,
		"Interest Expense": -30.0,
	}
	balance := fundamentals.Snapshot{
		"Stockholders Equity": 1000.0,
		"Total Debt":          600.0,
		"Current Assets":      500.0,
		"Current Liabilities": 250.0,
	}
	cashflow := fundamentals.Snapshot{
		"Operating Cash Flow": 300.0,
	}

	r := ComputeTTM(income, balance, cashflow, Fallbacks{})

	assert.InDelta(t, 0.20, r.ROE, 1e-9)
	assert.InDelta(t, 0.20, r.TaxRate, 1e-9)
	// (300 * 0.8) / 1600
	assert.InDelta(t, 0.15, r.ROIC, 1e-9)
	assert.InDelta(t, 1.5, r.DebtToEBITDA, 1e-9)
	// abs(-30) / 300 * 100
	assert.InDelta(t, 10.0, r.DebtServicingRatio, 1e-9)
	assert.InDelta(t, 2.0, r.CurrentRatio, 1e-9)
	assert.InDelta(t, 60.0, r.GearingRatio, 1e-9)
}

func TestComputeTTMFallbacks(t *testing.T) {
	r := ComputeTTM(fundamentals.Snapshot{}, fundamentals.Snapshot{}, fundamentals.Snapshot{}, Fallbacks{
		ReturnOnEquity: 0.18,
		DebtToEBITDA:   2.4,
	})

	assert.InDelta(t, 0.18, r.ROE, 1e-9)
	assert.InDelta(t, 2.4, r.DebtToEBITDA, 1e-9)
	assert.InDelta(t, DefaultTaxRate, r.TaxRate, 1e-9)
	assert.Zero(t, r.ROIC)
	assert.Zero(t, r.DebtServicingRatio)
	assert.Zero(t, r.CurrentRatio)
	assert.Zero(t, r.GearingRatio)
}

func TestMargins(t *testing.T) {
	dates := []string{"2024-12-31", "2023-12-31"}
	revenue := series.Series{Dates: dates, Values: []float64{1000, 800}}
	cogs := series.Series{Dates: dates, Values: []float64{600, 500}}
	ni := series.Series{Dates: dates, Values: []float64{150, 100}}

	gross := GrossMargin(revenue, cogs)
	assert.Equal(t, []float64{40.0, 37.5}, gross.Values)

	net := NetMargin(ni, revenue)
	assert.InDelta(t, 15.0, net.Values[0], 1e-9)
	assert.InDelta(t, 12.5, net.Values[1], 1e-9)

	assert.True(t, GrossMargin(series.Series{}, cogs).IsEmpty())
	assert.True(t, NetMargin(ni, series.Series{}).IsEmpty())
}

func TestMarginsZeroRevenueIsNaN(t *testing.T) {
	revenue := series.Series{Dates: []string{"2024-12-31"}, Values: []float64{0}}
	cogs := series.Series{Dates: []string{"2024-12-31"}, Values: []float64{10}}
	gross := GrossMargin(revenue, cogs)
	assert.True(t, math.IsNaN(gross.Values[0]))
}

func TestCashConversionCycle(t *testing.T) {
	periods := []string{"2024-12-31", "2023-12-31"}
	fin := series.NewTable(periods)
	fin.SetRow("Cost Of Revenue", []float64{365, 365})
	fin.SetRow("Total Revenue", []float64{730, 730})

	bal := series.NewTable(periods)
	bal.SetRow("Inventory", []float64{100, 90})
	bal.SetRow("Accounts Receivable", []float64{60, 60})
	bal.SetRow("Accounts Payable", []float64{50, 40})

	ttmBalance := fundamentals.Snapshot{"Inventory": 100.0}

	ccc, reason := CashConversionCycle(fin, bal, ttmBalance)
	assert.Empty(t, reason)
	assert.Equal(t, 2, ccc.Len())
	// 100 + 30 - 50 days for the newest period
	assert.InDelta(t, 80.0, ccc.Values[0], 1e-9)
	assert.InDelta(t, 80.0, ccc.Values[1], 1e-9)
}

func TestCashConversionCycleNoInventory(t *testing.T) {
	ccc, reason := CashConversionCycle(series.NewTable(nil), series.NewTable(nil), fundamentals.Snapshot{})
	assert.True(t, ccc.IsEmpty())
	assert.Equal(t, InventoryNotApplicable, reason)
}

func TestCashConversionCycleSkipsPeriodsWithoutCOGS(t *testing.T) {
	periods := []string{"2024-12-31", "2023-12-31"}
	fin := series.NewTable(periods)
	fin.SetRow("Cost Of Revenue", []float64{365, 0})
	fin.SetRow("Total Revenue", []float64{730, 700})

	bal := series.NewTable(periods)
	bal.SetRow("Inventory", []float64{100, 90})

	ccc, _ := CashConversionCycle(fin, bal, fundamentals.Snapshot{"Inventory": 100.0})
	assert.Equal(t, 1, ccc.Len())
}
