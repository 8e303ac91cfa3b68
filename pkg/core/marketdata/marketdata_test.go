package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for prefix, body := range routes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHistoryParsesChartResponse(t *testing.T) {
	body := `{"chart":{"result":[{
		"meta":{"currency":"USD","symbol":"AAPL","exchangeName":"NMS","regularMarketPrice":190.5,"previousClose":189.0},
		"timestamp":[1704153600,1704240000,1704326400],
		"indicators":{
			"quote":[{"close":[100.0,null,102.0],"high":[101.0,null,103.0],"low":[99.0,null,101.0],"open":[100.5,null,101.5],"volume":[1000,null,2000]}],
			"adjclose":[{"adjclose":[99.0,null,101.5]}]
		}
	}],"error":null}}`
	srv := stubServer(t, map[string]string{"/v8/finance/chart/": body})
	c := NewClientWithBaseURL(zerolog.Nop(), srv.URL)

	bars, meta, err := c.History(context.Background(), "AAPL", "1y", "1d", true)
	require.NoError(t, err)

	assert.Equal(t, "USD", meta.Currency)
	assert.Equal(t, 190.5, meta.RegularMarketPrice)

	// The null middle point is dropped; adjusted closes win.
	require.Len(t, bars, 2)
	assert.Equal(t, 99.0, bars[0].Close)
	assert.Equal(t, 101.5, bars[1].Close)
	assert.Equal(t, 99.0, bars[0].Low)
	assert.Equal(t, int64(1000), bars[0].Volume)
	assert.True(t, bars[1].Date.After(bars[0].Date))
}

func TestHistoryReportsChartError(t *testing.T) {
	body := `{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`
	srv := stubServer(t, map[string]string{"/v8/finance/chart/": body})
	c := NewClientWithBaseURL(zerolog.Nop(), srv.URL)

	_, _, err := c.History(context.Background(), "NOPE", "1y", "1d", false)
	assert.ErrorContains(t, err, "No data found")
}

func TestCompanyInfoFlattensModules(t *testing.T) {
	body := `{"quoteSummary":{"result":[{
		"price":{"symbol":"AAPL","longName":"Apple Inc.","currency":"USD","exchange":"NMS","quoteType":"EQUITY",
			"regularMarketPrice":{"raw":190.5},"regularMarketChange":{"raw":1.2},"regularMarketChangePercent":{"raw":0.0063},"marketCap":{"raw":2900000000000}},
		"summaryProfile":{"sector":"Technology","industry":"Consumer Electronics","country":"United States","longBusinessSummary":"Designs smartphones."},
		"assetProfile":{"companyOfficers":[{"name":"Mr. Timothy D. Cook","title":"CEO & Director"}]},
		"summaryDetail":{"beta":{"raw":1.25},"trailingPE":{"raw":31.0},"dividendYield":{"raw":0.0044}},
		"defaultKeyStatistics":{"trailingEps":{"raw":6.1},"bookValue":{"raw":4.3},"priceToBook":{"raw":44.0},"sharesOutstanding":{"raw":15400000000}},
		"financialData":{"currentPrice":{"raw":190.7},"returnOnEquity":{"raw":1.47},"revenuePerShare":{"raw":24.9},"earningsGrowth":{"raw":0.11},"revenueGrowth":{"raw":0.02}},
		"earningsTrend":{"trend":[{"period":"+1y","growth":{"raw":0.09},"revenueEstimate":{"growth":{"raw":0.06}}}]}
	}],"error":null}}`
	srv := stubServer(t, map[string]string{"/v10/finance/quoteSummary/": body})
	c := NewClientWithBaseURL(zerolog.Nop(), srv.URL)

	info, estimates, err := c.CompanyInfo(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Apple Inc.", info.LongName)
	assert.Equal(t, "Mr. Timothy D. Cook", info.CEO)
	assert.True(t, info.HasPrice())
	assert.Equal(t, 190.7, info.Price())
	require.NotNil(t, info.Beta)
	assert.Equal(t, 1.25, *info.Beta)
	assert.Nil(t, info.PegRatio)
	assert.False(t, info.IsETF())

	require.Len(t, estimates, 1)
	assert.Equal(t, "+1y", estimates[0].Period)
	assert.Equal(t, 0.06, *estimates[0].RevenueGrowth)
}

func TestStatementsBuildsTable(t *testing.T) {
	body := `{"timeseries":{"result":[
		{"meta":{"type":["annualTotalRevenue"]},
		 "annualTotalRevenue":[
			{"asOfDate":"2023-09-30","reportedValue":{"raw":383000000000}},
			{"asOfDate":"2024-09-30","reportedValue":{"raw":391000000000}}]},
		{"meta":{"type":["annualNetIncome"]},
		 "annualNetIncome":[
			null,
			{"asOfDate":"2024-09-30","reportedValue":{"raw":93700000000}}]}
	],"error":null}}`
	srv := stubServer(t, map[string]string{"/ws/fundamentals-timeseries/": body})
	c := NewClientWithBaseURL(zerolog.Nop(), srv.URL)

	table, err := c.Statements(context.Background(), "AAPL", StatementIncome, Annual)
	require.NoError(t, err)

	// Newest period first.
	assert.Equal(t, []string{"2024-09-30", "2023-09-30"}, table.Periods)
	v, ok := table.Value("Total Revenue", 0)
	assert.True(t, ok)
	assert.Equal(t, 391000000000.0, v)
	v, ok = table.Value("Total Revenue", 1)
	assert.True(t, ok)
	assert.Equal(t, 383000000000.0, v)

	// Net income has no 2023 figure: present as NaN, not zero.
	_, ok = table.Value("Net Income", 1)
	assert.False(t, ok)
}

func TestExchangeName(t *testing.T) {
	assert.Equal(t, "NASDAQ", ExchangeName("NMS"))
	assert.Equal(t, "NYSE", ExchangeName("NYQ"))
	assert.Equal(t, "XETRA", ExchangeName("XETRA"))
}

func TestBetaFromBars(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tickerBars, marketBars []Bar
	tickerPrice, marketPrice := 100.0, 100.0
	for i := 0; i < 40; i++ {
		sign := 1.0
		if i%2 == 1 {
			sign = -1.0
		}
		tickerPrice *= 1 + sign*0.02
		marketPrice *= 1 + sign*0.01
		d := day.AddDate(0, 0, i)
		tickerBars = append(tickerBars, Bar{Date: d, Close: tickerPrice})
		marketBars = append(marketBars, Bar{Date: d, Close: marketPrice})
	}

	// Ticker moves twice as hard as the market every day.
	assert.InDelta(t, 2.0, betaFromBars(tickerBars, marketBars), 0.05)

	// Too little overlap falls back to 1.0.
	assert.Equal(t, 1.0, betaFromBars(tickerBars[:5], marketBars[:5]))
}

func TestCalendarParsesEventDates(t *testing.T) {
	body := `{"quoteSummary":{"result":[{
		"calendarEvents":{
			"earnings":{"earningsDate":[{"raw":1762473600},{"raw":1762905600}]},
			"exDividendDate":{"raw":1762300800},
			"dividendDate":{"raw":1763078400}
		}
	}],"error":null}}`
	srv := stubServer(t, map[string]string{"/v10/finance/quoteSummary/": body})
	c := NewClientWithBaseURL(zerolog.Nop(), srv.URL)

	cal, err := c.Calendar(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-11-07", "2025-11-12"}, cal.EarningsDates)
	assert.Equal(t, "2025-11-05", cal.ExDividendDate)
	assert.Equal(t, "2025-11-14", cal.DividendDate)
}

func TestNewsParsesSearchResults(t *testing.T) {
	body := `{"news":[
		{"title":"Apple ships new chip","publisher":"Newswire","link":"https://example.com/a","providerPublishTime":1762473600},
		{"title":"Supply chain update","publisher":"Daily","link":"https://example.com/b","providerPublishTime":1762387200}
	]}`
	srv := stubServer(t, map[string]string{"/v1/finance/search": body})
	c := NewClientWithBaseURL(zerolog.Nop(), srv.URL)

	news, err := c.News(context.Background(), "AAPL", 8)
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "Apple ships new chip", news[0].Title)
	assert.Equal(t, "Newswire", news[0].Publisher)
	assert.Equal(t, int64(1762473600), news[0].ProviderPublishTime)
}
