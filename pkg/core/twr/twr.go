// Package twr computes time weighted returns for a portfolio of buy
// transactions under a start-of-day flow convention: a purchase joins
// the basis at cost before the market moves, so the buy day's price
// action is captured in that day's return.
package twr

import (
	"encoding/json"
	"sort"
	"time"
)

// Flow is one buy transaction at day granularity. Cost is the total
// consideration in the reporting currency.
type Flow struct {
	Ticker string
	Shares float64
	Cost   float64
	Date   time.Time
}

// PricePoint is one daily adjusted close, chronological order. Prices
// must already be normalized to the reporting currency.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// ChartPoint is one day of cumulative portfolio return in percent, plus
// optional benchmark columns serialized as val_<ticker>.
type ChartPoint struct {
	Date       string
	Value      float64
	Benchmarks map[string]float64
}

// MarshalJSON flattens benchmark columns into the point object.
func (p ChartPoint) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 2+len(p.Benchmarks))
	m["date"] = p.Date
	m["value"] = p.Value
	for ticker, v := range p.Benchmarks {
		m["val_"+ticker] = v
	}
	return json.Marshal(m)
}

// Result is the portfolio verdict: final TWR percent, the same figure
// per constituent, and the daily chart.
type Result struct {
	TotalTWR float64            `json:"total_twr"`
	Tickers  map[string]float64 `json:"tickers"`
	Chart    []ChartPoint       `json:"chart_data"`
}

type tickerState struct {
	shares    float64
	twr       float64
	prevValue float64
	lastPrice float64
}

// Compute runs the day-by-day state machine from one day before the
// earliest transaction through today. Histories and benchmarks map
// ticker to its daily close series; missing days fall back to the last
// known price, so weekends and holidays contribute flat returns.
func Compute(flows []Flow, histories, benchmarks map[string][]PricePoint, now time.Time) Result {
	if len(flows) == 0 {
		return Result{Tickers: map[string]float64{}}
	}

	flowsByDate := make(map[time.Time][]Flow)
	states := make(map[string]*tickerState)
	var minDate time.Time
	for _, f := range flows {
		d := normalizeDay(f.Date)
		flowsByDate[d] = append(flowsByDate[d], f)
		if minDate.IsZero() || d.Before(minDate) {
			minDate = d
		}
		if _, ok := states[f.Ticker]; !ok {
			states[f.Ticker] = &tickerState{twr: 1.0}
		}
	}

	indexes := make(map[string]*priceIndex, len(histories))
	for ticker, hist := range histories {
		indexes[ticker] = newPriceIndex(hist)
	}
	benchIndexes := make(map[string]*priceIndex, len(benchmarks))
	benchBaselines := make(map[string]float64, len(benchmarks))
	for ticker, hist := range benchmarks {
		benchIndexes[ticker] = newPriceIndex(hist)
	}

	portfolioTWR := 1.0
	prevClose := 0.0
	var chart []ChartPoint

	end := normalizeDay(now)
	for day := minDate.AddDate(0, 0, -1); !day.After(end); day = day.AddDate(0, 0, 1) {
		// Start of day: apply flows at cost.
		totalInflow := 0.0
		inflows := make(map[string]float64)
		for _, f := range flowsByDate[day] {
			st := states[f.Ticker]
			st.shares += f.Shares
			totalInflow += f.Cost
			inflows[f.Ticker] += f.Cost
			if st.lastPrice == 0 && f.Shares > 0 {
				st.lastPrice = f.Cost / f.Shares
			}
		}

		// End of day: mark holdings to market.
		endValue := 0.0
		endValues := make(map[string]float64, len(states))
		for ticker, st := range states {
			if st.shares == 0 {
				continue
			}
			price := resolvePrice(indexes[ticker], day, st)
			val := st.shares * price
			endValue += val
			endValues[ticker] = val
		}

		basis := prevClose + totalInflow
		if basis > 0.001 {
			portfolioTWR *= endValue / basis
		}

		point := ChartPoint{
			Date:  day.Format("2006-01-02"),
			Value: (portfolioTWR - 1) * 100,
		}
		for ticker, idx := range benchIndexes {
			price, ok := idx.onOrBefore(day)
			if !ok || price == 0 {
				continue
			}
			if benchBaselines[ticker] == 0 {
				benchBaselines[ticker] = price
			}
			if point.Benchmarks == nil {
				point.Benchmarks = make(map[string]float64)
			}
			point.Benchmarks[ticker] = (price/benchBaselines[ticker] - 1) * 100
		}
		chart = append(chart, point)

		prevClose = endValue

		for ticker, st := range states {
			tickerBasis := st.prevValue + inflows[ticker]
			if tickerBasis > 0.001 {
				st.twr *= endValues[ticker] / tickerBasis
			}
			st.prevValue = endValues[ticker]
		}
	}

	tickers := make(map[string]float64, len(states))
	for ticker, st := range states {
		tickers[ticker] = (st.twr - 1) * 100
	}
	return Result{
		TotalTWR: (portfolioTWR - 1) * 100,
		Tickers:  tickers,
		Chart:    chart,
	}
}

// resolvePrice prefers today's close, then the carried-forward last
// known price, then a backward pad into the history, then the cost
// basis seed.
func resolvePrice(idx *priceIndex, day time.Time, st *tickerState) float64 {
	if idx != nil {
		if price, ok := idx.exact(day); ok {
			st.lastPrice = price
			return price
		}
		if st.lastPrice > 0 {
			return st.lastPrice
		}
		if price, ok := idx.onOrBefore(day); ok {
			st.lastPrice = price
			return price
		}
	}
	return st.lastPrice
}

type priceIndex struct {
	byDate map[time.Time]float64
	sorted []PricePoint
}

func newPriceIndex(points []PricePoint) *priceIndex {
	idx := &priceIndex{byDate: make(map[time.Time]float64, len(points))}
	for _, p := range points {
		d := normalizeDay(p.Date)
		idx.byDate[d] = p.Close
		idx.sorted = append(idx.sorted, PricePoint{Date: d, Close: p.Close})
	}
	sort.Slice(idx.sorted, func(i, j int) bool {
		return idx.sorted[i].Date.Before(idx.sorted[j].Date)
	})
	return idx
}

func (idx *priceIndex) exact(day time.Time) (float64, bool) {
	v, ok := idx.byDate[day]
	return v, ok
}

func (idx *priceIndex) onOrBefore(day time.Time) (float64, bool) {
	i := sort.Search(len(idx.sorted), func(i int) bool {
		return idx.sorted[i].Date.After(day)
	})
	if i == 0 {
		return 0, false
	}
	return idx.sorted[i-1].Close, true
}

func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
