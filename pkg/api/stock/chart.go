package stock

import (
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"stock_insight/pkg/api/respond"
	"stock_insight/pkg/core/marketdata"
	"stock_insight/pkg/core/series"
)

// chartConfig maps a display timeframe to the fetch range, bar
// interval, and trailing window shown. Fetching more than the window
// gives the moving averages enough lead-in data. A zero window keeps
// everything fetched.
type chartConfig struct {
	fetchPeriod string
	interval    string
	window      int
}

var chartConfigs = map[string]chartConfig{
	"1D": {"5d", "1m", 390},
	"5D": {"1mo", "5m", 390},
	// 30m bars are only available for the trailing 60 days.
	"1M":  {"60d", "30m", 260},
	"3M":  {"6mo", "1h", 585},
	"6M":  {"2y", "1h", 960},
	"YTD": {"2y", "1d", 0},
	"1Y":  {"3y", "1d", 252},
	"5Y":  {"10y", "1wk", 260},
	"All": {"max", "1mo", 0},
}

var defaultChartConfig = chartConfig{fetchPeriod: "1y", interval: "1d"}

var smaPeriods = []int{50, 100, 150, 200}

// Chart returns the price series for a timeframe with SMA columns
// attached where the window has filled.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	timeframe := chi.URLParam(r, "timeframe")

	cfg, ok := chartConfigs[timeframe]
	if !ok {
		cfg = defaultChartConfig
	}

	bars, _, err := h.market.History(r.Context(), ticker, cfg.fetchPeriod, cfg.interval, false)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Str("timeframe", timeframe).
			Msg("chart fetch failed")
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"data":     chartPoints(bars, cfg, timeframe, time.Now()),
		"interval": cfg.interval,
	})
}

// chartPoints computes the moving averages over the full fetched
// series, then trims to the display window.
func chartPoints(bars []marketdata.Bar, cfg chartConfig, timeframe string, now time.Time) []interface{} {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	smas := make(map[int][]float64, len(smaPeriods))
	for _, period := range smaPeriods {
		smas[period] = series.RollingMean(closes, period)
	}

	start := 0
	if cfg.window > 0 && len(bars) > cfg.window {
		start = len(bars) - cfg.window
	}

	dateFormat := "2006-01-02"
	if intraday(cfg.interval) {
		dateFormat = "2006-01-02 15:04"
	}

	out := make([]interface{}, 0, len(bars)-start)
	for i := start; i < len(bars); i++ {
		bar := bars[i]
		if timeframe == "YTD" && bar.Date.Year() != now.Year() {
			continue
		}
		point := map[string]interface{}{
			"date":  bar.Date.Format(dateFormat),
			"close": bar.Close,
		}
		for _, period := range smaPeriods {
			if v := smas[period][i]; !math.IsNaN(v) {
				point[smaKey(period)] = v
			}
		}
		out = append(out, point)
	}
	return out
}

func intraday(interval string) bool {
	switch interval {
	case "1m", "5m", "30m", "1h":
		return true
	}
	return false
}

func smaKey(period int) string {
	switch period {
	case 50:
		return "SMA_50"
	case 100:
		return "SMA_100"
	case 150:
		return "SMA_150"
	default:
		return "SMA_200"
	}
}
