package valuation

import "context"

// GrowthSource supplies a forward analyst growth estimate for a ticker,
// typically scraped from the provider's analysis page. Implementations
// should be timeout bounded; an error simply moves derivation to the
// next fallback.
type GrowthSource interface {
	NextFiveYearGrowth(ctx context.Context, ticker string) (float64, error)
}

// DeriveGrowth resolves the year 1-5 growth assumption. Funds use their
// trailing five year average return. Stocks try the analyst estimate
// first, then trailing earnings or revenue growth when positive, then a
// 5% default. Every non-analyst source carries a disclosure note.
func DeriveGrowth(ctx context.Context, ticker string, p Profile, src GrowthSource) (float64, string) {
	if p.QuoteType == "ETF" {
		if p.FiveYearAverageReturn != nil {
			return *p.FiveYearAverageReturn, "Note: ETFs use historical 5Y average return rather than analyst projections."
		}
		return 0.05, "Note: ETF growth default (5%) used as 5Y average return was missing."
	}

	if src != nil {
		if g, err := src.NextFiveYearGrowth(ctx, ticker); err == nil {
			return g, ""
		}
	}

	// Trailing growth is a poor long-term proxy, and negative values are
	// never projected forward 20 years.
	if p.EarningsGrowth != nil && *p.EarningsGrowth > 0.01 {
		return *p.EarningsGrowth, "Note: Used current TTM Earnings Growth (long-term est. unavailable)."
	}
	if p.RevenueGrowth != nil && *p.RevenueGrowth > 0.01 {
		return *p.RevenueGrowth, "Note: Used current TTM Revenue Growth (long-term est. unavailable)."
	}

	return 0.05, "Note: Default growth (5%) used as no projections or growth metrics were found."
}

// ClampGrowth applies the projection caps: years 1-5 bounded to
// [-10%, 35%], years 6-10 capped at 15%, years 11-20 fixed at 4%
// (6% for China-domiciled entities).
func ClampGrowth(raw float64, country string) (y1to5, y6to10, y11to20 float64) {
	y1to5 = raw
	if y1to5 < -0.10 {
		y1to5 = -0.10
	}
	if y1to5 > 0.35 {
		y1to5 = 0.35
	}
	y6to10 = y1to5
	if y6to10 > 0.15 {
		y6to10 = 0.15
	}
	y11to20 = 0.04
	if isChina(country) {
		y11to20 = 0.06
	}
	return y1to5, y6to10, y11to20
}
