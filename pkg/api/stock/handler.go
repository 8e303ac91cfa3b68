// Package stock serves the per-ticker endpoints: the full report
// payload, raw price history, and the charting series with moving
// averages.
package stock

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"stock_insight/pkg/api/respond"
	"stock_insight/pkg/core/marketdata"
	"stock_insight/pkg/core/report"
	"stock_insight/pkg/core/store"
)

// ReportSource builds the full payload for one ticker.
type ReportSource interface {
	StockReport(ctx context.Context, ticker string) (map[string]interface{}, error)
}

// Handler serves the stock routes.
type Handler struct {
	reports ReportSource
	market  *marketdata.Client
	cache   *store.Store
	log     zerolog.Logger
}

func NewHandler(reports ReportSource, market *marketdata.Client, cache *store.Store, log zerolog.Logger) *Handler {
	return &Handler{
		reports: reports,
		market:  market,
		cache:   cache,
		log:     log.With().Str("component", "stock_api").Logger(),
	}
}

// Get returns the full report payload, served from the cache unless
// the caller asks for a refresh.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	if !refresh {
		if payload, ok := h.cache.GetStockPayload(r.Context(), ticker); ok {
			respond.JSON(w, http.StatusOK, payload)
			return
		}
	}

	payload, err := h.reports.StockReport(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			respond.Error(w, http.StatusNotFound,
				fmt.Sprintf("Stock '%s' not found or no data available.", ticker))
			return
		}
		h.log.Error().Err(err).Str("ticker", ticker).Msg("report build failed")
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.cache.PutStockPayload(r.Context(), ticker, payload)
	respond.JSON(w, http.StatusOK, payload)
}

// History returns [{date, close}] for the requested period. Upstream
// failures degrade to an empty list.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "20y"
	}

	bars, _, err := h.market.History(r.Context(), ticker, period, "1d", false)
	if err != nil {
		h.log.Warn().Err(err).Str("ticker", ticker).Msg("history fetch failed")
		respond.JSON(w, http.StatusOK, []interface{}{})
		return
	}

	out := make([]interface{}, 0, len(bars))
	for _, bar := range bars {
		out = append(out, map[string]interface{}{
			"date":  bar.Date.Format("2006-01-02"),
			"close": bar.Close,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
