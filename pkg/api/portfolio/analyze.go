package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"stock_insight/pkg/api/respond"
	"stock_insight/pkg/core/prompt"
	"stock_insight/pkg/core/utils"
	"stock_insight/pkg/core/valuation"
)

type analyzeRequest struct {
	Items        []Item                 `json:"items"`
	Metrics      map[string]interface{} `json:"metrics"`
	UID          string                 `json:"uid"`
	ForceRefresh bool                   `json:"forceRefresh"`
	PortfolioID  string                 `json:"portfolioId"`
}

// Analyze produces the portfolio narrative. The text is cached per
// user for a day since the underlying metrics move slowly.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.UID != "" && !req.ForceRefresh {
		if analysis, ok := h.cache.GetNarrative(r.Context(), req.UID); ok {
			respond.JSON(w, http.StatusOK, map[string]string{"analysis": analysis})
			return
		}
	}

	holdings, sectorTotals := h.holdingMetrics(r.Context(), req.Items)

	totalCost := 0.0
	for _, item := range req.Items {
		totalCost += item.TotalCost
	}

	metrics := prompt.NarrativeMetrics{
		WeightedBeta:       metricString(req.Metrics, "weightedBeta"),
		WeightedGrowth:     metricString(req.Metrics, "weightedGrowth"),
		TotalTWR:           metricString(req.Metrics, "totalTwr"),
		PortfolioHHI:       metricString(req.Metrics, "portfolioHHI"),
		SectorAllocation:   sectorAllocation(sectorTotals, totalCost),
		UnderweightSectors: prompt.MissingSectors(heldSectors(sectorTotals)),
	}

	text, err := h.agents.Generate(r.Context(), "narrative", prompt.Narrative(holdings, metrics), "", nil)
	if err != nil {
		h.log.Error().Err(err).Msg("narrative generation failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to generate analysis.")
		return
	}
	text = utils.CleanMarkdown(text)

	if req.UID != "" {
		h.cache.PutNarrative(r.Context(), req.UID, text)
	}
	respond.JSON(w, http.StatusOK, map[string]string{"analysis": text})
}

// holdingMetrics builds the per-position prompt lines by running each
// ticker through the report pipeline. A failed ticker contributes an
// error row rather than sinking the whole request.
func (h *Handler) holdingMetrics(ctx context.Context, items []Item) ([]prompt.Holding, map[string]float64) {
	holdings := make([]prompt.Holding, 0, len(items))
	sectorTotals := make(map[string]float64)

	for _, item := range items {
		holding := prompt.Holding{
			Ticker:     item.Ticker,
			Shares:     item.Shares,
			Status:     "Error",
			PEG:        "N/A",
			Beta:       "N/A",
			Growth5Y:   "N/A",
			CashToDebt: "N/A",
		}

		payload, err := h.reports.StockReport(ctx, item.Ticker)
		if err != nil {
			h.log.Warn().Err(err).Str("ticker", item.Ticker).Msg("holding metrics unavailable")
			holdings = append(holdings, holding)
			continue
		}

		sector := "Other"
		if overview, ok := payload["overview"].(map[string]interface{}); ok {
			if s, ok := overview["sector"].(string); ok && s != "" {
				sector = s
			}
			if peg, ok := overview["pegRatio"].(float64); ok {
				holding.PEG = fmt.Sprintf("%.2f", peg)
			}
			if beta, ok := overview["beta"].(float64); ok {
				holding.Beta = fmt.Sprintf("%.2f", beta)
			}
		}
		sectorTotals[sector] += item.TotalCost

		if val, ok := payload["valuation"].(valuation.Result); ok {
			holding.IntrinsicValue = val.IntrinsicValue
			holding.CurrentPrice = val.CurrentPrice
			holding.Status = val.Status
			if val.GrowthRateNext5Y != nil && *val.GrowthRateNext5Y != 0 {
				holding.Growth5Y = fmt.Sprintf("%.1f%%", *val.GrowthRateNext5Y*100)
			}
			switch {
			case val.Raw.TotalDebt > 0:
				holding.CashToDebt = fmt.Sprintf("%.2f", val.Raw.CashAndEquivalents/val.Raw.TotalDebt)
			case val.Raw.CashAndEquivalents > 0:
				holding.CashToDebt = "High (Net Cash)"
			}
		}
		holdings = append(holdings, holding)
	}
	return holdings, sectorTotals
}

func sectorAllocation(totals map[string]float64, totalCost float64) string {
	if totalCost == 0 || len(totals) == 0 {
		return "N/A"
	}
	sectors := make([]string, 0, len(totals))
	for s := range totals {
		sectors = append(sectors, s)
	}
	sort.Strings(sectors)

	parts := make([]string, 0, len(sectors))
	for _, s := range sectors {
		parts = append(parts, fmt.Sprintf("%s: %.1f%%", s, totals[s]/totalCost*100))
	}
	return strings.Join(parts, ", ")
}

func heldSectors(totals map[string]float64) map[string]bool {
	held := make(map[string]bool, len(totals))
	for s := range totals {
		held[s] = true
	}
	return held
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
