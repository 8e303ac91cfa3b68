package marketdata

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

const marketIndex = "^GSPC"

// ManualBeta computes a one year beta against the S&P 500 from daily
// returns when the provider reports none. Any data problem falls back
// to 1.0 rather than failing the request.
func (c *Client) ManualBeta(ctx context.Context, ticker string) float64 {
	tickerBars, _, err := c.History(ctx, ticker, "1y", "1d", false)
	if err != nil || len(tickerBars) == 0 {
		c.log.Warn().Str("ticker", ticker).Err(err).Msg("manual beta: ticker history unavailable")
		return 1.0
	}
	marketBars, _, err := c.History(ctx, marketIndex, "1y", "1d", false)
	if err != nil || len(marketBars) == 0 {
		c.log.Warn().Str("ticker", ticker).Err(err).Msg("manual beta: market history unavailable")
		return 1.0
	}
	return betaFromBars(tickerBars, marketBars)
}

func betaFromBars(tickerBars, marketBars []Bar) float64 {
	marketByDay := make(map[time.Time]float64, len(marketBars))
	for _, b := range marketBars {
		marketByDay[b.Date.Truncate(24*time.Hour)] = b.Close
	}

	var tickerCloses, marketCloses []float64
	for _, b := range tickerBars {
		if m, ok := marketByDay[b.Date.Truncate(24*time.Hour)]; ok && !math.IsNaN(b.Close) {
			tickerCloses = append(tickerCloses, b.Close)
			marketCloses = append(marketCloses, m)
		}
	}
	if len(tickerCloses) < 20 {
		return 1.0
	}

	tickerReturns := dailyReturns(tickerCloses)
	marketReturns := dailyReturns(marketCloses)

	variance := stat.Variance(marketReturns, nil)
	if variance == 0 {
		return 1.0
	}
	return stat.Covariance(tickerReturns, marketReturns, nil) / variance
}

func dailyReturns(closes []float64) []float64 {
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

func nan() float64 { return math.NaN() }
