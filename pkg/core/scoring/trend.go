// Package scoring evaluates the quality checklist: year-over-year trend
// checks, the economic moat composite and the weighted score that rolls
// the criteria up to a 0-100 number.
package scoring

import (
	"stock_insight/pkg/core/series"

	"gonum.org/v1/gonum/stat"
)

// Direction names a trend pattern a series is checked against.
type Direction int

const (
	// Increasing passes when values grow over the window.
	Increasing Direction = iota
	// StableIncreasing passes when values hold or grow within tolerance.
	StableIncreasing
	// ReducingStable passes when values hold or shrink within tolerance.
	ReducingStable
)

// CheckTrend reports whether a newest-first series follows the given
// direction. Three tests apply in order for Increasing: endpoint
// comparison, regression slope, then a consecutive year-over-year walk
// allowing the tolerance as downside wiggle. The stable directions use
// a tolerance-padded endpoint comparison backed by the slope test.
func CheckTrend(s series.Series, dir Direction, tolerance float64) bool {
	clean := s.Clean()
	if clean.Len() < 2 {
		return false
	}

	newest := clean.Values[0]
	oldest := clean.Values[clean.Len()-1]
	chronological := clean.Chronological()

	switch dir {
	case Increasing:
		if newest > oldest {
			return true
		}
		if regressionSlope(chronological) > 0 {
			return true
		}
		for i := 1; i < len(chronological); i++ {
			if chronological[i] < chronological[i-1]*(1-tolerance) {
				return false
			}
		}
		return true

	case StableIncreasing:
		if newest >= oldest*(1-tolerance) {
			return true
		}
		return regressionSlope(chronological) >= 0

	case ReducingStable:
		if newest <= oldest*(1+tolerance) {
			return true
		}
		return regressionSlope(chronological) <= 0
	}
	return false
}

func regressionSlope(chronological []float64) float64 {
	xs := make([]float64, len(chronological))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, chronological, nil, false)
	return slope
}
