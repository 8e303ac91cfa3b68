package fundamentals

import (
	"math"
	"testing"

	"stock_insight/pkg/core/series"

	"github.com/stretchr/testify/assert"
)

func quarterlyTable(periods int) *series.Table {
	dates := []string{"2024-09-30", "2024-06-30", "2024-03-31", "2023-12-31", "2023-09-30"}
	return series.NewTable(dates[:periods])
}

func TestAggregateTTMFlowSumsFourQuarters(t *testing.T) {
	tbl := quarterlyTable(5)
	tbl.SetRow("Net Income", []float64{10, 20, 30, 40, 99})

	snap := AggregateTTM(tbl, Flow)
	v, ok := snap.Get("Net Income")
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)
}

func TestAggregateTTMFlowRequiresFourColumns(t *testing.T) {
	tbl := quarterlyTable(3)
	tbl.SetRow("Net Income", []float64{10, 20, 30})

	snap := AggregateTTM(tbl, Flow)
	_, ok := snap.Get("Net Income")
	assert.False(t, ok, "metric must be absent, never partially summed")
}

func TestAggregateTTMFlowSkipsRowsWithGaps(t *testing.T) {
	tbl := quarterlyTable(4)
	tbl.SetRow("EBITDA", []float64{10, math.NaN(), 30, 40})
	tbl.SetRow("Total Revenue", []float64{1, 2, 3, 4})

	snap := AggregateTTM(tbl, Flow)
	_, ok := snap.Get("EBITDA")
	assert.False(t, ok)
	v, _ := snap.Get("Total Revenue")
	assert.Equal(t, 10.0, v)
}

func TestAggregateTTMPointInTimeTakesLatest(t *testing.T) {
	tbl := quarterlyTable(2)
	tbl.SetRow("Total Debt", []float64{500, 450})

	snap := AggregateTTM(tbl, PointInTime)
	v, ok := snap.Get("Total Debt")
	assert.True(t, ok)
	assert.Equal(t, 500.0, v)
}

func TestAggregateTTMEmptyTable(t *testing.T) {
	assert.True(t, AggregateTTM(nil, Flow).IsEmpty())
	assert.True(t, AggregateTTM(series.NewTable(nil), PointInTime).IsEmpty())
}

func TestExtractAllAliases(t *testing.T) {
	fin := series.NewTable([]string{"2024-12-31"})
	fin.SetRow("Total Revenue", []float64{100})

	bal := series.NewTable([]string{"2024-12-31"})
	bal.SetRow("Net Receivables", []float64{12})

	cf := series.NewTable([]string{"2024-12-31"})
	cf.SetRow("Total Cash From Operating Activities", []float64{25})

	out := ExtractAll(fin, bal, cf)
	assert.Equal(t, 100.0, out.Revenue.NewestOrZero())
	assert.Equal(t, 12.0, out.AccountsReceivable.NewestOrZero())
	assert.Equal(t, 25.0, out.OperatingCashFlow.NewestOrZero())
	assert.True(t, out.OperatingIncome.IsEmpty())
}
