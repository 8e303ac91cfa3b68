package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"stock_insight/pkg/core/series"
)

// Statement selects which financial statement table to fetch.
type Statement int

const (
	StatementIncome Statement = iota
	StatementBalance
	StatementCashflow
)

// Period selects annual or quarterly columns.
type Period int

const (
	Annual Period = iota
	Quarterly
)

// Row sets per statement, using the display names the numeric core
// looks up. The provider's timeseries type key is the prefixed name
// with spaces removed.
var statementRows = map[Statement][]string{
	StatementIncome: {
		"Total Revenue",
		"Net Income",
		"Operating Income",
		"Cost Of Revenue",
		"Interest Expense",
		"Tax Provision",
		"Pretax Income",
		"EBITDA",
		"EBIT",
		"Basic Average Shares",
		"Diluted Average Shares",
	},
	StatementBalance: {
		"Stockholders Equity",
		"Total Debt",
		"Cash And Cash Equivalents",
		"Cash Cash Equivalents And Short Term Investments",
		"Current Assets",
		"Current Liabilities",
		"Inventory",
		"Accounts Receivable",
		"Accounts Payable",
	},
	StatementCashflow: {
		"Operating Cash Flow",
		"Capital Expenditure",
		"Free Cash Flow",
	},
}

type timeseriesResponse struct {
	Timeseries struct {
		Result []timeseriesResult `json:"result"`
		Error  *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"timeseries"`
}

// timeseriesResult keys the value array by the requested type name, so
// everything besides meta stays raw until we know which key to read.
type timeseriesResult struct {
	Meta struct {
		Type []string `json:"type"`
	} `json:"meta"`
	Rows map[string]json.RawMessage `json:"-"`
}

func (r *timeseriesResult) UnmarshalJSON(data []byte) error {
	type alias timeseriesResult
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = timeseriesResult(a)
	return json.Unmarshal(data, &r.Rows)
}

type timeseriesValue struct {
	AsOfDate      string `json:"asOfDate"`
	ReportedValue struct {
		Raw *float64 `json:"raw"`
	} `json:"reportedValue"`
}

// Statements fetches one statement table. Absent rows are simply left
// out of the table; the extractors treat that as an empty series.
func (c *Client) Statements(ctx context.Context, ticker string, statement Statement, period Period) (*series.Table, error) {
	prefix := "annual"
	lookback := -6
	if period == Quarterly {
		prefix = "quarterly"
		lookback = -2
	}

	names := statementRows[statement]
	types := make([]string, len(names))
	for i, name := range names {
		types[i] = prefix + strings.ReplaceAll(name, " ", "")
	}

	now := time.Now()
	u := fmt.Sprintf("%s/ws/fundamentals-timeseries/v1/finance/timeseries/%s?symbol=%s&type=%s&period1=%d&period2=%d",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(ticker),
		url.QueryEscape(strings.Join(types, ",")), now.AddDate(lookback, 0, 0).Unix(), now.Unix())

	var resp timeseriesResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Timeseries.Error != nil {
		return nil, fmt.Errorf("timeseries %s: %s", ticker, resp.Timeseries.Error.Description)
	}

	// First pass: collect values per row and the union of period dates.
	byRow := make(map[string]map[string]float64)
	dateSet := make(map[string]struct{})
	for _, res := range resp.Timeseries.Result {
		if len(res.Meta.Type) == 0 {
			continue
		}
		key := res.Meta.Type[0]
		name := displayName(key, prefix, names)
		if name == "" {
			continue
		}
		raw, ok := res.Rows[key]
		if !ok {
			continue
		}
		var values []*timeseriesValue
		if err := json.Unmarshal(raw, &values); err != nil {
			continue
		}
		row := make(map[string]float64)
		for _, v := range values {
			if v == nil || v.ReportedValue.Raw == nil || v.AsOfDate == "" {
				continue
			}
			row[v.AsOfDate] = *v.ReportedValue.Raw
			dateSet[v.AsOfDate] = struct{}{}
		}
		if len(row) > 0 {
			byRow[name] = row
		}
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	table := series.NewTable(dates)
	for _, name := range names {
		row, ok := byRow[name]
		if !ok {
			continue
		}
		values := make([]float64, len(dates))
		for i, d := range dates {
			if v, found := row[d]; found {
				values[i] = v
			} else {
				values[i] = nan()
			}
		}
		table.SetRow(name, values)
	}
	return table, nil
}

func displayName(typeKey, prefix string, names []string) string {
	stripped := strings.TrimPrefix(typeKey, prefix)
	for _, name := range names {
		if strings.ReplaceAll(name, " ", "") == stripped {
			return name
		}
	}
	return ""
}
