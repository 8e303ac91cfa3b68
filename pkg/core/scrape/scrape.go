// Package scrape pulls analyst estimates off the quote analysis page.
// The quote API stopped exposing the long range growth figure, so the
// valuation engine falls back to scraping it.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://finance.yahoo.com"
	growthRowLabel = "Next 5 Years (per annum)"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Analyst fetches analyst growth estimates. It satisfies the growth
// source the valuation engine consumes.
type Analyst struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

// NewAnalyst builds a scraper with a browser user agent; the page
// serves a captcha to obvious bots.
func NewAnalyst(log zerolog.Logger) *Analyst {
	return &Analyst{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		log:        log.With().Str("client", "scrape").Logger(),
	}
}

// NewAnalystWithBaseURL is NewAnalyst pointed at a different host, for
// tests.
func NewAnalystWithBaseURL(log zerolog.Logger, baseURL string) *Analyst {
	a := NewAnalyst(log)
	a.baseURL = baseURL
	return a
}

// NextFiveYearGrowth returns the annualised five year growth estimate
// as a fraction, e.g. 0.12 for 12%.
func (a *Analyst) NextFiveYearGrowth(ctx context.Context, ticker string) (float64, error) {
	u := fmt.Sprintf("%s/quote/%s/analysis", a.baseURL, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch analysis page for %s: %w", ticker, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("analysis page for %s: status %d", ticker, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("parse analysis page for %s: %w", ticker, err)
	}

	growth, found := extractGrowth(doc)
	if !found {
		return 0, fmt.Errorf("no five year growth row for %s", ticker)
	}
	a.log.Debug().Str("ticker", ticker).Float64("growth", growth).Msg("scraped analyst growth")
	return growth, nil
}

// extractGrowth walks the growth estimates table looking for the five
// year row. The first data cell after the label is the ticker's own
// column; the rest are index and sector comparisons.
func extractGrowth(doc *goquery.Document) (float64, bool) {
	var growth float64
	found := false
	doc.Find("table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return true
		}
		label := strings.TrimSpace(cells.First().Text())
		if !strings.EqualFold(label, growthRowLabel) {
			return true
		}
		value, err := parsePercent(strings.TrimSpace(cells.Eq(1).Text()))
		if err != nil {
			return true
		}
		growth = value
		found = true
		return false
	})
	return growth, found
}

// parsePercent converts "10.50%" to 0.105. N/A and dashes are errors.
func parsePercent(text string) (float64, error) {
	text = strings.TrimSpace(strings.TrimSuffix(text, "%"))
	text = strings.ReplaceAll(text, ",", "")
	if text == "" || text == "N/A" || text == "--" {
		return 0, fmt.Errorf("no percent value in %q", text)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("parse percent %q: %w", text, err)
	}
	return v / 100, nil
}
