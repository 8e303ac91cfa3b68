// Package prompt builds the prompts for the two LLM tasks: economic
// moat evaluation and portfolio narrative analysis.
package prompt

import (
	"fmt"
	"time"
)

// MoatEvaluation is the JSON shape the moat prompt requests.
type MoatEvaluation struct {
	BrandMonopoly      string `json:"brandMonopoly"`
	NetworkEffect      string `json:"networkEffect"`
	EconomyOfScale     string `json:"economyOfScale"`
	HighBarrierToEntry string `json:"highBarrierToEntry"`
	HighSwitchingCost  string `json:"highSwitchingCost"`
	Description        string `json:"description"`
}

const moatTemplate = `Evaluate the economic moat of the stock with code: %s.
Current Date: %s.
Please evaluate based on the latest information available as of this date.

Criteria to evaluate:
1. Brand Monopoly
2. Network Effect
3. Economy of Scale
4. High Barrier to Entry
5. High Switching Cost

For each criteria, provide an evaluation of exactly one of these three values: "High", "Low", or "None".
Also provide a short description (around 3 short sentences) explaining why you evaluated the stock this way.

Return the response in the following JSON format ONLY, do not include markdown formatting or explanations outside the JSON:
{
  "brandMonopoly": "High/Low/None",
  "networkEffect": "High/Low/None",
  "economyOfScale": "High/Low/None",
  "highBarrierToEntry": "High/Low/None",
  "highSwitchingCost": "High/Low/None",
  "description": "Your short explanation here"
}`

// Moat renders the moat evaluation prompt for a ticker.
func Moat(ticker string, now time.Time) string {
	return fmt.Sprintf(moatTemplate, ticker, now.Format("2006-01-02"))
}
