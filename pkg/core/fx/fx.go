// Package fx resolves currency exchange rates for USD normalization.
// Rates come from the free Frankfurter API when it is up, else from a
// cross-quote on the market data provider, else from a small constants
// table so a dead FX source never fails a portfolio request.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stock_insight/pkg/core/marketdata"
)

const frankfurterBaseURL = "https://api.frankfurter.app"

// Approximate quotes per 1 USD, used only when every live source fails.
var constantRates = map[string]float64{
	"SGD": 1.35,
	"EUR": 0.92,
	"GBP": 0.79,
	"CNY": 7.20,
}

// HistoryProvider is the slice of the market data client the converter
// needs for cross-quotes and rate histories.
type HistoryProvider interface {
	History(ctx context.Context, ticker, rng, interval string, adjusted bool) ([]marketdata.Bar, marketdata.ChartMeta, error)
	HistoryFrom(ctx context.Context, ticker string, start time.Time, adjusted bool) ([]marketdata.Bar, marketdata.ChartMeta, error)
}

// Converter resolves spot rates and daily rate histories.
type Converter struct {
	httpClient     *http.Client
	frankfurterURL string
	provider       HistoryProvider
	log            zerolog.Logger
}

func NewConverter(provider HistoryProvider, log zerolog.Logger) *Converter {
	return &Converter{
		httpClient:     &http.Client{Timeout: 5 * time.Second},
		frankfurterURL: frankfurterBaseURL,
		provider:       provider,
		log:            log.With().Str("client", "fx").Logger(),
	}
}

// NewConverterWithBaseURL is NewConverter with the Frankfurter host
// swapped out, for tests.
func NewConverterWithBaseURL(provider HistoryProvider, log zerolog.Logger, frankfurterURL string) *Converter {
	c := NewConverter(provider, log)
	c.frankfurterURL = frankfurterURL
	return c
}

// Rate returns the spot rate from base to target, i.e. how many units
// of target one unit of base buys. Never fails; the last resort is the
// constants table, then 1.0.
func (c *Converter) Rate(ctx context.Context, base, target string) float64 {
	base = strings.ToUpper(base)
	target = strings.ToUpper(target)
	if base == target {
		return 1.0
	}

	if rate, err := c.frankfurterRate(ctx, base, target); err == nil {
		return rate
	} else {
		c.log.Warn().Str("base", base).Str("target", target).Err(err).Msg("frankfurter lookup failed")
	}

	if rate, err := c.crossQuoteRate(ctx, base, target); err == nil {
		return rate
	} else {
		c.log.Warn().Str("base", base).Str("target", target).Err(err).Msg("cross quote lookup failed")
	}

	if rate, ok := constantRates[target]; ok && base == "USD" {
		return rate
	}
	return 1.0
}

// RateHistory returns daily quotes of the currency per 1 USD from the
// start date, for normalizing a local-currency price series.
func (c *Converter) RateHistory(ctx context.Context, currency string, start time.Time) ([]marketdata.Bar, error) {
	ticker := fmt.Sprintf("%s=X", strings.ToUpper(currency))
	bars, _, err := c.provider.HistoryFrom(ctx, ticker, start, false)
	if err != nil {
		return nil, fmt.Errorf("fx history %s: %w", currency, err)
	}
	return bars, nil
}

func (c *Converter) frankfurterRate(ctx context.Context, base, target string) (float64, error) {
	u := fmt.Sprintf("%s/latest?from=%s&to=%s", c.frankfurterURL, url.QueryEscape(base), url.QueryEscape(target))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("frankfurter status %d", resp.StatusCode)
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	rate, ok := body.Rates[target]
	if !ok || rate == 0 {
		return 0, fmt.Errorf("no rate for %s", target)
	}
	return rate, nil
}

func (c *Converter) crossQuoteRate(ctx context.Context, base, target string) (float64, error) {
	ticker := fmt.Sprintf("%s%s=X", base, target)
	bars, _, err := c.provider.History(ctx, ticker, "1d", "1d", false)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("no bars for %s", ticker)
	}
	return bars[len(bars)-1].Close, nil
}
