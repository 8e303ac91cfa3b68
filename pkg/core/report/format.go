package report

import (
	"math"

	"stock_insight/pkg/core/fundamentals"
	"stock_insight/pkg/core/marketdata"
	"stock_insight/pkg/core/series"
)

var smaPeriods = []int{50, 100, 150, 200}

// formatSeriesTable shapes a statement series for the frontend tables:
// the five newest periods as {date, value, growth%}. NaN cells render
// as zero, matching the table's "no data" display.
func formatSeriesTable(s series.Series) []interface{} {
	rows := make([]interface{}, 0, 5)
	for i := 0; i < s.Len() && i < 5; i++ {
		value := s.Values[i]
		if math.IsNaN(value) {
			value = 0
		}
		rows = append(rows, map[string]interface{}{
			"date":   s.Dates[i],
			"value":  value,
			"growth": s.GrowthAt(i) * 100,
		})
	}
	return rows
}

// revenueHistory renders the revenue series oldest-first for charting.
func revenueHistory(revenue series.Series) []interface{} {
	out := make([]interface{}, 0, revenue.Len())
	for i := revenue.Len() - 1; i >= 0; i-- {
		if math.IsNaN(revenue.Values[i]) {
			continue
		}
		out = append(out, map[string]interface{}{
			"date":  revenue.Dates[i],
			"value": revenue.Values[i],
		})
	}
	return out
}

// historyWithSMAs renders the daily history with the 50/100/150/200
// moving averages attached once each window has enough data.
func historyWithSMAs(bars []marketdata.Bar) []interface{} {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	smas := make(map[int][]float64, len(smaPeriods))
	for _, period := range smaPeriods {
		smas[period] = series.RollingMean(closes, period)
	}

	out := make([]interface{}, 0, len(bars))
	for i, bar := range bars {
		point := map[string]interface{}{
			"date":  bar.Date.Format("2006-01-02"),
			"close": bar.Close,
		}
		for _, period := range smaPeriods {
			if v := smas[period][i]; !math.IsNaN(v) {
				point[smaKey(period)] = v
			}
		}
		out = append(out, point)
	}
	return out
}

func smaKey(period int) string {
	switch period {
	case 50:
		return "SMA_50"
	case 100:
		return "SMA_100"
	case 150:
		return "SMA_150"
	default:
		return "SMA_200"
	}
}

// intradayHistory renders the 15 minute bars with minute timestamps.
func intradayHistory(bars []marketdata.Bar) []interface{} {
	out := make([]interface{}, 0, len(bars))
	for _, bar := range bars {
		out = append(out, map[string]interface{}{
			"date":  bar.Date.Format("2006-01-02 15:04"),
			"close": bar.Close,
		})
	}
	return out
}

// formatStatementTable shapes a statement table for the frontend: five
// newest annual columns, with a leading TTM column when a snapshot is
// available. NaN cells pass through and are scrubbed to null at the
// payload level.
func formatStatementTable(t *series.Table, ttm fundamentals.Snapshot) map[string]interface{} {
	if t.IsEmpty() {
		return map[string]interface{}{"dates": []interface{}{}, "metrics": []interface{}{}}
	}

	cols := t.NumPeriods()
	if cols > 5 {
		cols = 5
	}

	dates := make([]interface{}, 0, cols+1)
	if !ttm.IsEmpty() {
		dates = append(dates, "TTM")
	}
	for i := 0; i < cols; i++ {
		dates = append(dates, t.Periods[i])
	}

	metrics := make([]interface{}, 0, len(t.RowNames()))
	for _, name := range t.RowNames() {
		row, _ := t.Row(name)
		values := make([]interface{}, 0, cols+1)
		if !ttm.IsEmpty() {
			values = append(values, ttm.Value(name))
		}
		for i := 0; i < cols; i++ {
			values = append(values, row.Values[i])
		}
		metrics = append(metrics, map[string]interface{}{
			"name":   name,
			"values": values,
		})
	}
	return map[string]interface{}{"dates": dates, "metrics": metrics}
}

// calendarPayload shapes the event dates, degrading to an empty object
// when the fetch failed.
func calendarPayload(cal *marketdata.CompanyCalendar) interface{} {
	if cal == nil {
		return map[string]interface{}{}
	}
	return cal
}

// newsPayload never serializes a null news list.
func newsPayload(items []marketdata.NewsItem) interface{} {
	if items == nil {
		return []interface{}{}
	}
	return items
}
