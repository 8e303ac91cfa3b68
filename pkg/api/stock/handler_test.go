package stock

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_insight/pkg/core/marketdata"
	"stock_insight/pkg/core/report"
	"stock_insight/pkg/core/store"
)

type stubReports struct {
	payload map[string]interface{}
	err     error
	ticker  string
}

func (s *stubReports) StockReport(ctx context.Context, ticker string) (map[string]interface{}, error) {
	s.ticker = ticker
	return s.payload, s.err
}

func disabledStore(t *testing.T) *store.Store {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	s, err := store.Open(context.Background(), zerolog.Nop())
	require.NoError(t, err)
	return s
}

func newRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/stock/history/{ticker}", h.History)
	r.Get("/api/stock/{ticker}", h.Get)
	r.Get("/api/chart/{ticker}/{timeframe}", h.Chart)
	return r
}

func TestGetReturns404ForUnknownTicker(t *testing.T) {
	reports := &stubReports{err: report.ErrNotFound}
	h := NewHandler(reports, marketdata.NewClient(zerolog.Nop()), disabledStore(t), zerolog.Nop())

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stock/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
	assert.Equal(t, "NOPE", reports.ticker)
}

func TestGetReturnsPayload(t *testing.T) {
	reports := &stubReports{payload: map[string]interface{}{
		"overview": map[string]interface{}{"symbol": "AAPL", "price": 190.5},
	}}
	h := NewHandler(reports, marketdata.NewClient(zerolog.Nop()), disabledStore(t), zerolog.Nop())

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stock/aapl?refresh=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	overview := body["overview"].(map[string]interface{})
	assert.Equal(t, "AAPL", overview["symbol"])
}

func TestGetReportsBuildFailure(t *testing.T) {
	reports := &stubReports{err: errors.New("upstream exploded")}
	h := NewHandler(reports, marketdata.NewClient(zerolog.Nop()), disabledStore(t), zerolog.Nop())

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stock/AAPL", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream exploded")
}

func TestHistoryFormatsBars(t *testing.T) {
	body := `{"chart":{"result":[{
		"meta":{"currency":"USD","symbol":"AAPL"},
		"timestamp":[1704153600,1704240000],
		"indicators":{"quote":[{"close":[100.0,102.0],"high":[101.0,103.0],"low":[99.0,101.0],"open":[100.5,101.5],"volume":[1000,2000]}]}
	}],"error":null}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	market := marketdata.NewClientWithBaseURL(zerolog.Nop(), srv.URL)
	h := NewHandler(&stubReports{}, market, disabledStore(t), zerolog.Nop())

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stock/history/AAPL?period=5y", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var points []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-02", points[0]["date"])
	assert.Equal(t, 100.0, points[0]["close"])
}

func TestHistoryDegradesToEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	market := marketdata.NewClientWithBaseURL(zerolog.Nop(), srv.URL)
	h := NewHandler(&stubReports{}, market, disabledStore(t), zerolog.Nop())

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stock/history/AAPL", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func dailyBars(n int, start time.Time) []marketdata.Bar {
	bars := make([]marketdata.Bar, n)
	for i := range bars {
		bars[i] = marketdata.Bar{
			Date:  start.AddDate(0, 0, i),
			Close: float64(i + 1),
		}
	}
	return bars
}

func TestChartPointsTrimsToWindowWithSMAs(t *testing.T) {
	bars := dailyBars(300, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	cfg := chartConfig{fetchPeriod: "3y", interval: "1d", window: 252}

	points := chartPoints(bars, cfg, "1Y", time.Now())
	require.Len(t, points, 252)

	first := points[0].(map[string]interface{})
	assert.Equal(t, 49.0, first["close"])
	_, hasSMA := first["SMA_50"]
	assert.False(t, hasSMA, "lead-in bars should not carry an unfilled SMA")

	second := points[1].(map[string]interface{})
	assert.InDelta(t, 25.5, second["SMA_50"].(float64), 1e-9)

	last := points[len(points)-1].(map[string]interface{})
	assert.Equal(t, 300.0, last["close"])
	assert.InDelta(t, 275.5, last["SMA_50"].(float64), 1e-9)
	assert.InDelta(t, 200.5, last["SMA_200"].(float64), 1e-9)
}

func TestChartPointsYTDKeepsCurrentYearOnly(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := dailyBars(120, time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC))
	cfg := chartConfigs["YTD"]

	points := chartPoints(bars, cfg, "YTD", now)
	require.NotEmpty(t, points)
	for _, p := range points {
		date := p.(map[string]interface{})["date"].(string)
		assert.True(t, strings.HasPrefix(date, "2026-"), "expected only current year, got %s", date)
	}
}

func TestChartPointsIntradayDateFormat(t *testing.T) {
	bars := []marketdata.Bar{{
		Date:  time.Date(2026, 2, 2, 14, 30, 0, 0, time.UTC),
		Close: 101.5,
	}}
	cfg := chartConfigs["5D"]

	points := chartPoints(bars, cfg, "5D", time.Now())
	require.Len(t, points, 1)
	assert.Equal(t, "2026-02-02 14:30", points[0].(map[string]interface{})["date"])
}
