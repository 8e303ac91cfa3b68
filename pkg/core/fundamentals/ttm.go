// Package fundamentals turns raw statement tables into the named series
// and trailing-twelve-month snapshots the ratio and valuation layers
// consume.
package fundamentals

import (
	"math"

	"stock_insight/pkg/core/series"
)

// StatementKind selects the TTM aggregation rule for a quarterly table.
type StatementKind int

const (
	// Flow statements (income statement, cash flow) sum the latest four
	// quarterly columns.
	Flow StatementKind = iota
	// PointInTime statements (balance sheet) take the most recent
	// quarterly column.
	PointInTime
)

// Snapshot maps metric name to a single TTM value. Metrics that could not
// be aggregated are absent, never zero.
type Snapshot map[string]float64

// Get returns the metric and whether it is present.
func (s Snapshot) Get(name string) (float64, bool) {
	v, ok := s[name]
	return v, ok
}

// Value returns the metric with a zero default. Formulas that document a
// zero fallback use this; everything else should use Get.
func (s Snapshot) Value(name string) float64 {
	return s[name]
}

// IsEmpty reports whether the snapshot has no metrics.
func (s Snapshot) IsEmpty() bool { return len(s) == 0 }

// AggregateTTM derives a TTM snapshot from a quarterly statement table.
// Flow rows need all four most-recent quarters; a row with any NaN in
// that range is absent from the snapshot (never partially summed).
func AggregateTTM(quarterly *series.Table, kind StatementKind) Snapshot {
	snap := Snapshot{}
	if quarterly.IsEmpty() {
		return snap
	}

	switch kind {
	case Flow:
		if quarterly.NumPeriods() < 4 {
			return snap
		}
		for _, name := range quarterly.RowNames() {
			row, _ := quarterly.Row(name)
			sum := 0.0
			valid := true
			for i := 0; i < 4; i++ {
				v := row.Values[i]
				if math.IsNaN(v) {
					valid = false
					break
				}
				sum += v
			}
			if valid {
				snap[name] = sum
			}
		}
	case PointInTime:
		for _, name := range quarterly.RowNames() {
			if v, ok := quarterly.Value(name, 0); ok {
				snap[name] = v
			}
		}
	}
	return snap
}
