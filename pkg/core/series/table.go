package series

import "math"

// Table is an ordered map of named row series sharing one period axis.
// Periods are ISO dates, newest first. Cells missing in the upstream
// statement are NaN.
type Table struct {
	Periods []string
	order   []string
	rows    map[string][]float64
}

// NewTable creates a table with the given period axis (newest first).
func NewTable(periods []string) *Table {
	return &Table{
		Periods: periods,
		rows:    make(map[string][]float64),
	}
}

// SetRow stores a row, padding or truncating values to the period axis.
func (t *Table) SetRow(name string, values []float64) {
	row := make([]float64, len(t.Periods))
	for i := range row {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = math.NaN()
		}
	}
	if _, exists := t.rows[name]; !exists {
		t.order = append(t.order, name)
	}
	t.rows[name] = row
}

// HasRow reports whether a row with this exact label exists.
func (t *Table) HasRow(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.rows[name]
	return ok
}

// Row returns the named row as a Series sharing the table's period axis.
func (t *Table) Row(name string) (Series, bool) {
	if t == nil {
		return Series{}, false
	}
	vals, ok := t.rows[name]
	if !ok {
		return Series{}, false
	}
	return Series{Dates: t.Periods, Values: vals}, true
}

// Extract returns the row matching the canonical name, else the first
// matching alias, else an empty series. Absence is never an error.
func (t *Table) Extract(name string, aliases ...string) Series {
	if s, ok := t.Row(name); ok {
		return s
	}
	for _, alias := range aliases {
		if s, ok := t.Row(alias); ok {
			return s
		}
	}
	return Series{}
}

// Value returns the cell at (row, column offset), reporting whether it
// exists and is a real number.
func (t *Table) Value(name string, col int) (float64, bool) {
	if t == nil {
		return 0, false
	}
	vals, ok := t.rows[name]
	if !ok || col < 0 || col >= len(vals) || math.IsNaN(vals[col]) {
		return 0, false
	}
	return vals[col], true
}

// ValueOrZero is Value with a zero default, for formula positions where
// the documented fallback is 0.
func (t *Table) ValueOrZero(name string, col int) float64 {
	v, _ := t.Value(name, col)
	return v
}

// RowNames returns row labels in insertion order.
func (t *Table) RowNames() []string {
	if t == nil {
		return nil
	}
	return t.order
}

// NumPeriods returns the number of period columns.
func (t *Table) NumPeriods() int {
	if t == nil {
		return 0
	}
	return len(t.Periods)
}

// IsEmpty reports whether the table has no rows or no periods.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.rows) == 0 || len(t.Periods) == 0
}
