// Package support estimates support price levels from weekly and daily
// history. Candidates come from three sources: moving averages the price
// has repeatedly bounced off, swing-low fractals, and clustered
// historical zones. The final list is deduplicated and capped at five.
package support

import (
	"fmt"
	"math"
	"sort"
	"time"

	"stock_insight/pkg/core/series"
)

// Bar is one period of price history, chronological order.
type Bar struct {
	Date  time.Time
	Close float64
	Low   float64
}

// Level is a validated support candidate.
type Level struct {
	Price  float64 `json:"price"`
	Source string  `json:"source"`
	Reason string  `json:"reason"`
	Score  float64 `json:"score"`
}

var smaWindows = []int{50, 100, 200}

// Levels derives support levels from five years of weekly bars and one
// year of daily bars. An empty daily history yields no levels.
func Levels(weekly5Y, daily1Y []Bar) []Level {
	if len(daily1Y) == 0 {
		return nil
	}
	currentPrice := daily1Y[len(daily1Y)-1].Close

	var candidates []Level
	candidates = append(candidates, smaTouchCandidates("Weekly", weekly5Y, currentPrice)...)
	candidates = append(candidates, smaTouchCandidates("Daily", daily1Y, currentPrice)...)

	lows := swingLows(weekly5Y, 10)
	lows = append(lows, swingLows(daily1Y, 14)...)
	sort.Float64s(lows)

	for _, c := range clusterLows(lows, currentPrice) {
		candidates = append(candidates, Level{
			Price:  c.price,
			Source: "Price Action",
			Reason: fmt.Sprintf("Historical Support Zone (%d points)", c.count),
			Score:  float64(c.count) * 2.0,
		})
	}

	unique := dedupe(candidates)
	if len(unique) > 5 {
		unique = unique[:5]
	}
	return unique
}

// smaTouchCandidates counts bars where the low dipped to within 1.5% of
// the SMA while the close held above it. Two or more touches on a major
// SMA sitting below the current price make it a support candidate,
// weighted towards levels near the price.
func smaTouchCandidates(timeframe string, bars []Bar, currentPrice float64) []Level {
	if len(bars) < 50 {
		return nil
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	var out []Level
	for _, window := range smaWindows {
		if len(bars) < window {
			continue
		}
		sma := series.RollingMean(closes, window)

		touches := 0
		for i, b := range bars {
			if math.IsNaN(sma[i]) {
				continue
			}
			if b.Low <= sma[i]*1.015 && b.Close > sma[i] {
				touches++
			}
		}
		if touches < 2 {
			continue
		}
		currentSMA := sma[len(sma)-1]
		if math.IsNaN(currentSMA) || currentSMA >= currentPrice {
			continue
		}
		proximity := 1 - math.Abs(currentPrice-currentSMA)/currentPrice
		out = append(out, Level{
			Price:  currentSMA,
			Source: timeframe + " SMA",
			Reason: fmt.Sprintf("%s %d SMA - %d touches", timeframe, window, touches),
			Score:  float64(touches) * 2.5 * proximity,
		})
	}
	return out
}

// swingLows finds fractal lows: bars whose low is not exceeded downward
// by any bar within the window on either side.
func swingLows(bars []Bar, window int) []float64 {
	var lows []float64
	for i := window; i < len(bars)-window; i++ {
		isLow := true
		for j := i - window; j <= i+window; j++ {
			if j == i {
				continue
			}
			if bars[j].Low < bars[i].Low {
				isLow = false
				break
			}
		}
		if isLow {
			lows = append(lows, bars[i].Low)
		}
	}
	return lows
}

type zone struct {
	price float64
	count int
}

// clusterLows greedily grows a cluster while each new low stays within
// 3% of the running cluster average, then keeps the zones that sit
// below the current price. Input must be sorted ascending.
func clusterLows(sorted []float64, currentPrice float64) []zone {
	if len(sorted) == 0 {
		return nil
	}
	var zones []zone
	cluster := []float64{sorted[0]}

	flush := func() {
		avg := mean(cluster)
		if avg < currentPrice {
			zones = append(zones, zone{price: avg, count: len(cluster)})
		}
	}

	for _, low := range sorted[1:] {
		avg := mean(cluster)
		if (low-avg)/avg <= 0.03 {
			cluster = append(cluster, low)
			continue
		}
		flush()
		cluster = []float64{low}
	}
	flush()
	return zones
}

// dedupe sorts candidates by price descending and merges levels within
// 2.5% of an accepted one, keeping the higher score.
func dedupe(candidates []Level) []Level {
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Price > candidates[j].Price
	})

	unique := []Level{candidates[0]}
	for _, c := range candidates[1:] {
		merged := false
		for i := range unique {
			if math.Abs(c.Price-unique[i].Price)/unique[i].Price < 0.025 {
				if c.Score > unique[i].Score {
					unique[i] = c
				}
				merged = true
				break
			}
		}
		if !merged {
			unique = append(unique, c)
		}
	}
	return unique
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
