package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMoatPrompt(t *testing.T) {
	p := Moat("AAPL", time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	assert.Contains(t, p, "stock with code: AAPL")
	assert.Contains(t, p, "Current Date: 2026-03-15")
	assert.Contains(t, p, `"highSwitchingCost"`)
	assert.Contains(t, p, "JSON format ONLY")
}

func TestMissingSectors(t *testing.T) {
	held := map[string]bool{"Technology": true, "Healthcare": true}
	assert.Equal(t, "Financial Services, Consumer Cyclical, Consumer Defensive, Industrials", MissingSectors(held))

	all := map[string]bool{}
	for _, s := range MajorSectors {
		all[s] = true
	}
	assert.Equal(t, "Defensive or Emerging Markets", MissingSectors(all))
}

func TestNarrativePrompt(t *testing.T) {
	holdings := []Holding{
		{Ticker: "AAPL", Shares: 10, IntrinsicValue: 180.5, CurrentPrice: 190.25, Status: "Overvalued", PEG: "2.10", Beta: "1.25", Growth5Y: "9.0%", CashToDebt: "0.55"},
		{Ticker: "MSFT", Shares: 5, IntrinsicValue: 410, CurrentPrice: 400, Status: "Fairly Valued", PEG: "N/A", Beta: "0.90", Growth5Y: "N/A", CashToDebt: "High (Net Cash)"},
	}
	m := NarrativeMetrics{
		WeightedBeta:       "1.12",
		WeightedGrowth:     "10.5",
		TotalTWR:           "8.3",
		SectorAllocation:   "Technology: 100.0%",
		PortfolioHHI:       "5000",
		UnderweightSectors: "Healthcare, Energy",
	}

	p := Narrative(holdings, m)
	assert.Contains(t, p, "- AAPL: 10 shares. (Intrinsic Value: $180.50, Current Price: $190.25, Status: Overvalued, PEG: 2.10, Beta: 1.25, 5Y Growth Est: 9.0%, Cash/Debt: 0.55)")
	assert.Contains(t, p, "Weighted Portfolio Beta: 1.12")
	assert.Contains(t, p, "Portfolio HHI (Concentration Index): 5000")
	assert.Contains(t, p, "new entries in Healthcare, Energy")
	assert.Contains(t, p, "Keep it under 350 words.")
}
