package twr

import (
	"sort"
	"time"
)

// NormalizeToUSD converts a local-currency close series using a daily
// FX series quoted as units of local currency per USD. The rate is
// aligned to the price dates with forward fill, then backward fill for
// any leading gap. An empty rate series leaves prices untouched.
func NormalizeToUSD(prices, rates []PricePoint) []PricePoint {
	if len(rates) == 0 {
		return prices
	}

	aligned := make([]PricePoint, 0, len(rates))
	for _, r := range rates {
		if r.Close != 0 {
			aligned = append(aligned, PricePoint{Date: normalizeDay(r.Date), Close: r.Close})
		}
	}
	if len(aligned) == 0 {
		return prices
	}
	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Date.Before(aligned[j].Date)
	})

	out := make([]PricePoint, len(prices))
	for i, p := range prices {
		day := normalizeDay(p.Date)
		rate := rateFor(aligned, day)
		out[i] = PricePoint{Date: p.Date, Close: p.Close / rate}
	}
	return out
}

func rateFor(sorted []PricePoint, day time.Time) float64 {
	i := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Date.After(day)
	})
	if i == 0 {
		// Leading gap: backward fill from the first known rate.
		return sorted[0].Close
	}
	return sorted[i-1].Close
}
