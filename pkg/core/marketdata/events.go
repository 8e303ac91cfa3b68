package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// CompanyCalendar carries the upcoming event dates from the provider's
// calendarEvents module.
type CompanyCalendar struct {
	EarningsDates  []string `json:"Earnings Date,omitempty"`
	ExDividendDate string   `json:"Ex-Dividend Date,omitempty"`
	DividendDate   string   `json:"Dividend Date,omitempty"`
}

// NewsItem is one headline from the provider's search endpoint.
type NewsItem struct {
	Title               string `json:"title"`
	Publisher           string `json:"publisher"`
	Link                string `json:"link"`
	ProviderPublishTime int64  `json:"providerPublishTime"`
}

type calendarResponse struct {
	QuoteSummary struct {
		Result []struct {
			CalendarEvents *struct {
				Earnings struct {
					EarningsDate []*rawValue `json:"earningsDate"`
				} `json:"earnings"`
				ExDividendDate *rawValue `json:"exDividendDate"`
				DividendDate   *rawValue `json:"dividendDate"`
			} `json:"calendarEvents"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Calendar fetches the upcoming earnings and dividend dates.
func (c *Client) Calendar(ctx context.Context, ticker string) (*CompanyCalendar, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=calendarEvents",
		c.baseURL, url.PathEscape(ticker))

	var resp calendarResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("calendar %s: %s", ticker, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("calendar %s: empty result", ticker)
	}

	cal := &CompanyCalendar{}
	if ce := resp.QuoteSummary.Result[0].CalendarEvents; ce != nil {
		for _, d := range ce.Earnings.EarningsDate {
			if d != nil && d.Raw != nil {
				cal.EarningsDates = append(cal.EarningsDates, epochDate(*d.Raw))
			}
		}
		if ce.ExDividendDate != nil && ce.ExDividendDate.Raw != nil {
			cal.ExDividendDate = epochDate(*ce.ExDividendDate.Raw)
		}
		if ce.DividendDate != nil && ce.DividendDate.Raw != nil {
			cal.DividendDate = epochDate(*ce.DividendDate.Raw)
		}
	}
	return cal, nil
}

type searchResponse struct {
	News []NewsItem `json:"news"`
}

// News fetches recent headlines for a ticker.
func (c *Client) News(ctx context.Context, ticker string, count int) ([]NewsItem, error) {
	u := fmt.Sprintf("%s/v1/finance/search?q=%s&newsCount=%d&quotesCount=0",
		c.baseURL, url.QueryEscape(ticker), count)

	var resp searchResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	return resp.News, nil
}

func epochDate(epoch float64) string {
	return time.Unix(int64(epoch), 0).UTC().Format("2006-01-02")
}
