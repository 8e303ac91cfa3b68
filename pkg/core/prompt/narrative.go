package prompt

import (
	"fmt"
	"strings"
)

// MajorSectors is the GICS-style sector list used to spot gaps in a
// portfolio's allocation.
var MajorSectors = []string{
	"Technology", "Healthcare", "Financial Services", "Consumer Cyclical",
	"Consumer Defensive", "Industrials", "Communication Services",
	"Energy", "Utilities", "Real Estate", "Basic Materials",
}

// MissingSectors returns up to four major sectors absent from the held
// set, as a comma-joined suggestion string.
func MissingSectors(held map[string]bool) string {
	var missing []string
	for _, s := range MajorSectors {
		if !held[s] {
			missing = append(missing, s)
		}
	}
	if len(missing) > 4 {
		missing = missing[:4]
	}
	if len(missing) == 0 {
		return "Defensive or Emerging Markets"
	}
	return strings.Join(missing, ", ")
}

// Holding is one position's display metrics for the narrative prompt.
// String fields hold "N/A" when a metric is unavailable.
type Holding struct {
	Ticker         string
	Shares         float64
	IntrinsicValue float64
	CurrentPrice   float64
	Status         string
	PEG            string
	Beta           string
	Growth5Y       string
	CashToDebt     string
}

// NarrativeMetrics carries portfolio-level context for the prompt.
type NarrativeMetrics struct {
	WeightedBeta       string
	WeightedGrowth     string
	TotalTWR           string
	SectorAllocation   string
	PortfolioHHI       string
	UnderweightSectors string
}

// Narrative renders the portfolio analysis prompt.
func Narrative(holdings []Holding, m NarrativeMetrics) string {
	lines := make([]string, 0, len(holdings))
	for _, h := range holdings {
		lines = append(lines, fmt.Sprintf(
			"- %s: %g shares. (Intrinsic Value: $%.2f, Current Price: $%.2f, Status: %s, PEG: %s, Beta: %s, 5Y Growth Est: %s, Cash/Debt: %s)",
			h.Ticker, h.Shares, h.IntrinsicValue, h.CurrentPrice, h.Status, h.PEG, h.Beta, h.Growth5Y, h.CashToDebt))
	}

	return fmt.Sprintf(`You are a Senior Quantitative Portfolio Manager and Fiduciary Strategist.

MANDATE:
Optimize this portfolio for a 12-15%% annual return (or higher) while minimizing downside volatility and concentration risk.

PORTFOLIO DATA CORE (Inward):
%s
- Weighted Portfolio Beta: %s
- Aggregate 5Y Growth Est: %s%%
- Portfolio TWR (Performance to Date): %s%%
- Sector Allocation: %s
- Portfolio HHI (Concentration Index): %s

OUTWARD LOOK (The Opportunity Set):
- Benchmark: S&P 500 (Beta 1.0)
- Underweight Sectors: %s
- Risk-Free Rate Proxy (10Y Treasury): ~4.2%%
- Target Return: 12-15%% CAGR

ANALYSIS REQUIREMENTS (Clinical & Data-Driven):
1. **Allocation & Concentration Audit**:
   - Evaluate the Sector Allocation and the Portfolio HHI. Is the portfolio "top-heavy" or over-concentrated in a few names or sectors?
   - If HHI is <1500, validate the diversification. If HHI is > 1500 (moderate) or > 2500 (high), flag concentration risk and suggest specific rebalancing to lower concentration risk.
   - Assess if the weighted growth target is being skewed by 1-2 volatile tickers.

2. **Growth-to-Value Efficiency**:
   - Analyze the relationship between the Expected 5Y Growth and the average PEG Ratio of the holdings.
   - Are we paying too much for the 12-15%% target? Identify any "Growth at any Price" (GAAP) risks where PEG > 2.0.

3. **Holdings Audit (Inward)**:
   - **STAR**: Best-in-class PEG ratio with strong Cash-to-Debt ratios and >15%% growth.
   - **LAGGARD**: High Beta (>1.2) or high Debt-to-Equity that threatens the "Low Risk" mandate.

4. **The "Outward" Strategy**:
   - Define the **Selection Basis** for new entries in %s that offer high 5Y growth projections but lower the overall Portfolio Beta.
   - Specify exactly what criteria (e.g., "Positive FCF Yield," "ROIC > 15%%," or "Low Debt-to-EBITDA" or "Strong Pricing Power" or "Wide Economic moat", or "Low Debt-to-EBITDA") the user should look for to hit 12-15%% growth safely.
   - Based on this criteria, list 5 illustrative "Strategic Peer Alternatives" (tickers) that fit this profile today.

5. **Actionable Rebalancing Roadmap**:
   - **Trim/Exit**: Clear recommendation for the laggard or overvalued assets.
   - **Tactical Entry**: How to integrate the scouted tickers to fix sector gaps.
   - **Optimization**: Provide 3 specific rebalancing moves (e.g., "Shift 5%% from Sector A to Sector B") to push the portfolio toward the Efficient Frontier.

FORMAT RULES:
- Use **bold headers** for the 5 sections above.
- Use bullet points for all details.
- **NO concluding summary** or generic advice after section 5.
- Keep it under 350 words.`,
		strings.Join(lines, "\n"),
		m.WeightedBeta, m.WeightedGrowth, m.TotalTWR, m.SectorAllocation, m.PortfolioHHI,
		m.UnderweightSectors, m.UnderweightSectors)
}
