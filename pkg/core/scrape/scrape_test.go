package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisPage = `<html><body>
<table>
  <thead><tr><th>Growth Estimates</th><th>AAPL</th><th>Industry</th><th>S&amp;P 500</th></tr></thead>
  <tbody>
    <tr><td>Current Qtr.</td><td>5.10%</td><td>4.00%</td><td>8.00%</td></tr>
    <tr><td>Next 5 Years (per annum)</td><td>12.34%</td><td>9.00%</td><td>10.00%</td></tr>
  </tbody>
</table>
</body></html>`

func TestNextFiveYearGrowth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/AAPL/analysis", r.URL.Path)
		w.Write([]byte(analysisPage))
	}))
	defer srv.Close()

	a := NewAnalystWithBaseURL(zerolog.Nop(), srv.URL)
	growth, err := a.NextFiveYearGrowth(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 0.1234, growth, 1e-9)
}

func TestNextFiveYearGrowthMissingRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><table><tr><td>Current Qtr.</td><td>5%</td></tr></table></body></html>`))
	}))
	defer srv.Close()

	a := NewAnalystWithBaseURL(zerolog.Nop(), srv.URL)
	_, err := a.NextFiveYearGrowth(context.Background(), "XYZ")
	assert.ErrorContains(t, err, "no five year growth row")
}

func TestNextFiveYearGrowthBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewAnalystWithBaseURL(zerolog.Nop(), srv.URL)
	_, err := a.NextFiveYearGrowth(context.Background(), "AAPL")
	assert.ErrorContains(t, err, "status 429")
}

func TestParsePercent(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.34%", 0.1234, true},
		{"-3.00%", -0.03, true},
		{"1,200.00%", 12.0, true},
		{"N/A", 0, false},
		{"--", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := parsePercent(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.InDelta(t, tc.want, got, 1e-9, tc.in)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}
