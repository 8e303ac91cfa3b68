// Package portfolio serves the portfolio endpoints: time weighted
// return calculation and the LLM rebalancing narrative.
package portfolio

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stock_insight/pkg/api/respond"
	"stock_insight/pkg/core/fx"
	"stock_insight/pkg/core/marketdata"
	"stock_insight/pkg/core/store"
	"stock_insight/pkg/core/twr"
)

// historyFetchLead pads the fetch window so weekend and holiday buys
// can fall back to the prior trading day's close.
const historyFetchLead = 7 * 24 * time.Hour

// Item is one buy transaction as sent by the frontend.
type Item struct {
	Ticker    string  `json:"ticker"`
	Shares    float64 `json:"shares"`
	TotalCost float64 `json:"totalCost"`
	Date      string  `json:"purchaseDate"`
}

// ReportSource builds the full payload for one ticker.
type ReportSource interface {
	StockReport(ctx context.Context, ticker string) (map[string]interface{}, error)
}

// Generator produces text for a named agent role.
type Generator interface {
	Generate(ctx context.Context, agentType, prompt, systemPrompt string, options map[string]interface{}) (string, error)
}

// Handler serves the portfolio routes.
type Handler struct {
	market  *marketdata.Client
	fx      *fx.Converter
	reports ReportSource
	agents  Generator
	cache   *store.Store
	log     zerolog.Logger
}

func NewHandler(market *marketdata.Client, converter *fx.Converter, reports ReportSource, agents Generator, cache *store.Store, log zerolog.Logger) *Handler {
	return &Handler{
		market:  market,
		fx:      converter,
		reports: reports,
		agents:  agents,
		cache:   cache,
		log:     log.With().Str("component", "portfolio_api").Logger(),
	}
}

type twrRequest struct {
	Items             []Item   `json:"items"`
	UID               string   `json:"uid"`
	ComparisonTickers []string `json:"comparisonTickers"`
}

// TWR computes the portfolio's time weighted return. Results are
// cached per user for the rest of the UTC day, keyed on a hash of the
// transactions so any edit invalidates the cache.
func (h *Handler) TWR(w http.ResponseWriter, r *http.Request) {
	var req twrRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	inputHash := store.InputHash(req.Items)
	if req.UID != "" {
		if cached, ok := h.cache.GetTWR(r.Context(), req.UID, inputHash); ok {
			respond.Raw(w, http.StatusOK, cached)
			return
		}
	}

	result := h.computeTWR(r.Context(), req.Items, req.ComparisonTickers)

	if req.UID != "" {
		h.cache.PutTWR(r.Context(), req.UID, inputHash, result)
	}
	respond.JSON(w, http.StatusOK, result)
}

func (h *Handler) computeTWR(ctx context.Context, items []Item, comparison []string) twr.Result {
	flows := make([]twr.Flow, 0, len(items))
	for _, item := range items {
		date, err := time.Parse("2006-01-02", item.Date)
		if err != nil {
			h.log.Warn().Str("ticker", item.Ticker).Str("date", item.Date).
				Msg("skipping transaction with invalid date")
			continue
		}
		flows = append(flows, twr.Flow{
			Ticker: item.Ticker,
			Shares: item.Shares,
			Cost:   item.TotalCost,
			Date:   date,
		})
	}
	if len(flows) == 0 {
		return twr.Result{Tickers: map[string]float64{}}
	}

	fetchStart := flows[0].Date
	for _, f := range flows[1:] {
		if f.Date.Before(fetchStart) {
			fetchStart = f.Date
		}
	}
	fetchStart = fetchStart.Add(-historyFetchLead)

	histories := h.fetchHistories(ctx, tickersOf(flows), fetchStart)
	benchmarks := h.fetchHistories(ctx, comparison, fetchStart)

	return twr.Compute(flows, histories, benchmarks, time.Now())
}

// fetchHistories pulls adjusted daily closes for each ticker and
// normalizes non-USD listings with the matching FX series. A failed
// fetch drops the ticker; the return engine falls back to cost basis.
func (h *Handler) fetchHistories(ctx context.Context, tickers []string, start time.Time) map[string][]twr.PricePoint {
	histories := make(map[string][]twr.PricePoint, len(tickers))
	currencies := make(map[string]string, len(tickers))

	for _, ticker := range tickers {
		bars, meta, err := h.market.HistoryFrom(ctx, ticker, start, true)
		if err != nil {
			h.log.Warn().Err(err).Str("ticker", ticker).Msg("history fetch failed")
			continue
		}
		points := make([]twr.PricePoint, 0, len(bars))
		for _, bar := range bars {
			points = append(points, twr.PricePoint{Date: bar.Date, Close: bar.Close})
		}
		histories[ticker] = points

		currency := strings.ToUpper(meta.Currency)
		if currency != "" && currency != "USD" {
			currencies[ticker] = currency
		}
	}

	rates := make(map[string][]twr.PricePoint)
	for _, currency := range currencies {
		if _, done := rates[currency]; done {
			continue
		}
		bars, err := h.fx.RateHistory(ctx, currency, start)
		if err != nil {
			h.log.Warn().Err(err).Str("currency", currency).Msg("fx history fetch failed")
			continue
		}
		points := make([]twr.PricePoint, 0, len(bars))
		for _, bar := range bars {
			points = append(points, twr.PricePoint{Date: bar.Date, Close: bar.Close})
		}
		rates[currency] = points
	}

	for ticker, currency := range currencies {
		if fxSeries, ok := rates[currency]; ok {
			histories[ticker] = twr.NormalizeToUSD(histories[ticker], fxSeries)
		}
	}
	return histories
}

func tickersOf(flows []twr.Flow) []string {
	seen := make(map[string]bool, len(flows))
	out := make([]string, 0, len(flows))
	for _, f := range flows {
		if !seen[f.Ticker] {
			seen[f.Ticker] = true
			out = append(out, f.Ticker)
		}
	}
	sort.Strings(out)
	return out
}

func metricString(metrics map[string]interface{}, key string) string {
	v, ok := metrics[key]
	if !ok || v == nil {
		return "N/A"
	}
	if s, isString := v.(string); isString {
		return s
	}
	return fmt.Sprintf("%v", v)
}
