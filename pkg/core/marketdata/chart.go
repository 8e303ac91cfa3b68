package marketdata

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"
)

// Bar is one period of price history, chronological order.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// ChartMeta carries the chart endpoint's instrument metadata.
type ChartMeta struct {
	Currency           string
	Symbol             string
	ExchangeName       string
	InstrumentType     string
	RegularMarketPrice float64
	PreviousClose      float64
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				ExchangeName       string  `json:"exchangeName"`
				InstrumentType     string  `json:"instrumentType"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Open   []*float64 `json:"open"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				Adjclose []struct {
					Adjclose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History fetches bars for a range/interval pair, e.g. ("1y", "1d").
// When adjusted is true the adjusted close replaces the raw close, so
// dividends show up as total return.
func (c *Client) History(ctx context.Context, ticker, rng, interval string, adjusted bool) ([]Bar, ChartMeta, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s&events=div%%2Csplit",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(rng), url.QueryEscape(interval))
	return c.history(ctx, ticker, u, adjusted)
}

// HistoryFrom fetches daily bars from a start date through now.
func (c *Client) HistoryFrom(ctx context.Context, ticker string, start time.Time, adjusted bool) ([]Bar, ChartMeta, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		c.baseURL, url.PathEscape(ticker), start.Unix(), time.Now().Unix())
	return c.history(ctx, ticker, u, adjusted)
}

func (c *Client) history(ctx context.Context, ticker, u string, adjusted bool) ([]Bar, ChartMeta, error) {
	var resp chartResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, ChartMeta{}, err
	}
	if resp.Chart.Error != nil {
		return nil, ChartMeta{}, fmt.Errorf("chart %s: %s", ticker, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ChartMeta{}, fmt.Errorf("chart %s: empty result", ticker)
	}

	res := resp.Chart.Result[0]
	meta := ChartMeta{
		Currency:           res.Meta.Currency,
		Symbol:             res.Meta.Symbol,
		ExchangeName:       res.Meta.ExchangeName,
		InstrumentType:     res.Meta.InstrumentType,
		RegularMarketPrice: res.Meta.RegularMarketPrice,
		PreviousClose:      res.Meta.PreviousClose,
	}
	if len(res.Indicators.Quote) == 0 {
		return nil, meta, nil
	}
	quote := res.Indicators.Quote[0]

	var adjclose []*float64
	if adjusted && len(res.Indicators.Adjclose) > 0 {
		adjclose = res.Indicators.Adjclose[0].Adjclose
	}

	bars := make([]Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		closePrice := deref(quote.Close, i)
		if adjclose != nil {
			if adj := deref(adjclose, i); !math.IsNaN(adj) {
				closePrice = adj
			}
		}
		if math.IsNaN(closePrice) {
			continue
		}
		bars = append(bars, Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   deref(quote.Open, i),
			High:   deref(quote.High, i),
			Low:    deref(quote.Low, i),
			Close:  closePrice,
			Volume: derefInt(quote.Volume, i),
		})
	}
	return bars, meta, nil
}

func deref(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}

func derefInt(vals []*int64, i int) int64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}
