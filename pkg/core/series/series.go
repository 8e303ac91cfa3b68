// Package series provides the ordered-series and statement-table data
// structures used across the numeric core. Statement tables are keyed by
// row label and ordered newest-period-first, matching the upstream
// provider's convention.
package series

import "math"

// Series is a date-indexed sequence of values, newest-first.
// Missing points are represented as NaN; a missing row is an empty Series.
type Series struct {
	Dates  []string
	Values []float64
}

// Len returns the number of points, including NaN placeholders.
func (s Series) Len() int { return len(s.Values) }

// IsEmpty reports whether the series has no points at all.
func (s Series) IsEmpty() bool { return len(s.Values) == 0 }

// Newest returns the most recent value, and whether it exists and is valid.
func (s Series) Newest() (float64, bool) {
	for i := 0; i < len(s.Values); i++ {
		if !math.IsNaN(s.Values[i]) {
			return s.Values[i], i == 0
		}
	}
	return 0, false
}

// NewestOrZero returns the value at index 0, or 0 for an empty series.
// NaN propagates as 0.
func (s Series) NewestOrZero() float64 {
	if len(s.Values) == 0 || math.IsNaN(s.Values[0]) {
		return 0
	}
	return s.Values[0]
}

// OldestOrZero returns the last (oldest) value, or 0 for an empty series.
func (s Series) OldestOrZero() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[len(s.Values)-1]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Clean returns a copy with NaN points dropped, preserving order.
func (s Series) Clean() Series {
	out := Series{}
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		if i < len(s.Dates) {
			out.Dates = append(out.Dates, s.Dates[i])
		} else {
			out.Dates = append(out.Dates, "")
		}
		out.Values = append(out.Values, v)
	}
	return out
}

// Head returns the newest n points.
func (s Series) Head(n int) Series {
	if n > len(s.Values) {
		n = len(s.Values)
	}
	out := Series{Values: append([]float64(nil), s.Values[:n]...)}
	if n <= len(s.Dates) {
		out.Dates = append([]string(nil), s.Dates[:n]...)
	}
	return out
}

// Chronological returns the values oldest-first.
func (s Series) Chronological() []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[len(s.Values)-1-i] = v
	}
	return out
}

// YoYGrowth returns the period-over-period growth of the newest point
// against the next-older one, or 0 if fewer than 2 points exist.
func (s Series) YoYGrowth() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	newer, older := s.Values[0], s.Values[1]
	if math.IsNaN(newer) || math.IsNaN(older) || older == 0 {
		return 0
	}
	return (newer - older) / older
}

// GrowthAt returns the growth of value[i] vs value[i+1] (newer vs older),
// or 0 when the comparison is not computable.
func (s Series) GrowthAt(i int) float64 {
	if i < 0 || i+1 >= len(s.Values) {
		return 0
	}
	newer, older := s.Values[i], s.Values[i+1]
	if math.IsNaN(newer) || math.IsNaN(older) || older == 0 {
		return 0
	}
	return (newer - older) / older
}
