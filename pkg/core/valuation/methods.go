package valuation

import (
	"math"
	"time"

	"stock_insight/pkg/core/series"
)

// Valuation method names as shown in the payload.
const (
	MethodDFCF   = "Discounted Free Cash Flow (DFCF)"
	MethodDOCF   = "Discounted Operating Cash Flow (DOCF)"
	MethodDNI    = "Discounted Net Income (DNI)"
	MethodPB     = "Mean Price-to-Book (PB)"
	MethodPSG    = "Price to Sales Growth (PSG)"
	MethodGraham = "Graham Number"
)

// psgConstant is the fixed fair-value multiplier for the price to sales
// growth method.
const psgConstant = 0.20

// projectAndDiscount runs the 20 year three-tier projection and returns
// the sum of discounted future values.
func projectAndDiscount(base, y1to5, y6to10, y11to20, rate float64) float64 {
	val := base
	sum := 0.0
	year := 1
	step := func(growth float64, years int) {
		for i := 0; i < years; i++ {
			val *= 1 + growth
			sum += val / math.Pow(1+rate, float64(year))
			year++
		}
	}
	step(y1to5, 5)
	step(y6to10, 5)
	step(y11to20, 10)
	return sum
}

// grahamNumber is sqrt(22.5 * EPS * BVPS), defined only for positive
// inputs.
func grahamNumber(eps, bookValue float64) float64 {
	if eps <= 0 || bookValue <= 0 {
		return 0
	}
	return math.Sqrt(22.5 * eps * bookValue)
}

// isConsistent reports whether a newest-first series grows with at most
// one meaningful dip: at least len-2 of the consecutive comparisons must
// show the newer value holding 90% of the older one.
func isConsistent(s series.Series) bool {
	n := s.Len()
	if n < 3 {
		return false
	}
	increases := 0
	for i := 0; i < n-1; i++ {
		if s.Values[i] >= s.Values[i+1]*0.9 {
			increases++
		}
	}
	return increases >= n-2
}

// historicalMeanPB averages price-to-book over the annual periods where
// equity, share count and a close on or before the period date all
// exist. Multiples outside (0, 100) are treated as data artifacts.
func historicalMeanPB(balanceSheet, financials *series.Table, history []PricePoint) (float64, bool) {
	equity, ok := balanceSheet.Row("Stockholders Equity")
	if !ok {
		return 0, false
	}
	sharesRow := financials.Extract("Basic Average Shares", "Diluted Average Shares")
	if sharesRow.IsEmpty() || len(history) == 0 {
		return 0, false
	}

	sharesByDate := make(map[string]float64, sharesRow.Len())
	for i, d := range sharesRow.Dates {
		sharesByDate[d] = sharesRow.Values[i]
	}

	var sum float64
	var count int
	for i, d := range equity.Dates {
		sh, found := sharesByDate[d]
		if !found || sh <= 0 || math.IsNaN(sh) || math.IsNaN(equity.Values[i]) {
			continue
		}
		bvps := equity.Values[i] / sh
		if bvps <= 0 {
			continue
		}
		price, found := priceOnOrBefore(history, d)
		if !found {
			continue
		}
		pb := price / bvps
		if pb > 0 && pb < 100 {
			sum += pb
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// priceOnOrBefore pads backwards: the latest close dated on or before
// the ISO period date.
func priceOnOrBefore(history []PricePoint, isoDate string) (float64, bool) {
	target, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return 0, false
	}
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].Date.After(target) {
			return history[i].Close, true
		}
	}
	return 0, false
}
