package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// CompanyInfo is the flattened quote summary. Pointer fields separate
// "not reported" from zero; the core's fallback rules depend on that.
type CompanyInfo struct {
	Symbol      string
	LongName    string
	Currency    string
	Exchange    string
	QuoteType   string
	Sector      string
	Industry    string
	Country     string
	Description string
	CEO         string

	CurrentPrice               *float64
	RegularMarketPrice         *float64
	RegularMarketChange        float64
	RegularMarketChangePercent float64
	MarketCap                  *float64
	Beta                       *float64
	Beta3Year                  *float64
	TrailingPE                 *float64
	ForwardPE                  *float64
	PegRatio                   *float64
	TrailingEPS                *float64
	ForwardEPS                 *float64
	DividendYield              *float64
	BookValue                  *float64
	PriceToBook                *float64
	SharesOutstanding          *float64
	ImpliedSharesOutstanding   *float64
	RevenuePerShare            *float64
	ReturnOnEquity             *float64
	ReturnOnAssets             *float64
	DebtToEquity               *float64
	EarningsGrowth             *float64
	RevenueGrowth              *float64
	FiveYearAverageReturn      *float64
}

// IsETF reports whether the instrument is a fund rather than a company.
func (c *CompanyInfo) IsETF() bool { return c.QuoteType == "ETF" }

// Price returns the best available price: live, else regular market.
func (c *CompanyInfo) Price() float64 {
	if c.CurrentPrice != nil {
		return *c.CurrentPrice
	}
	if c.RegularMarketPrice != nil {
		return *c.RegularMarketPrice
	}
	return 0
}

// HasPrice reports whether any price field was returned at all; a quote
// without one means the ticker does not exist.
func (c *CompanyInfo) HasPrice() bool {
	return c.CurrentPrice != nil || c.RegularMarketPrice != nil
}

// GrowthEstimate is one row of the provider's earnings trend table.
type GrowthEstimate struct {
	Period        string   `json:"period"`
	Growth        *float64 `json:"growth"`
	RevenueGrowth *float64 `json:"revenueGrowth"`
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v *rawValue) ptr() *float64 {
	if v == nil {
		return nil
	}
	return v.Raw
}

func (v *rawValue) orZero() float64 {
	if v == nil || v.Raw == nil {
		return 0
	}
	return *v.Raw
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				Symbol                     string    `json:"symbol"`
				LongName                   string    `json:"longName"`
				Currency                   string    `json:"currency"`
				Exchange                   string    `json:"exchange"`
				QuoteType                  string    `json:"quoteType"`
				RegularMarketPrice         *rawValue `json:"regularMarketPrice"`
				RegularMarketChange        *rawValue `json:"regularMarketChange"`
				RegularMarketChangePercent *rawValue `json:"regularMarketChangePercent"`
				MarketCap                  *rawValue `json:"marketCap"`
			} `json:"price"`
			SummaryProfile *struct {
				Sector              string `json:"sector"`
				Industry            string `json:"industry"`
				Country             string `json:"country"`
				LongBusinessSummary string `json:"longBusinessSummary"`
			} `json:"summaryProfile"`
			AssetProfile *struct {
				CompanyOfficers []struct {
					Name  string `json:"name"`
					Title string `json:"title"`
				} `json:"companyOfficers"`
			} `json:"assetProfile"`
			SummaryDetail *struct {
				Beta          *rawValue `json:"beta"`
				TrailingPE    *rawValue `json:"trailingPE"`
				ForwardPE     *rawValue `json:"forwardPE"`
				DividendYield *rawValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				Beta                     *rawValue `json:"beta"`
				Beta3Year                *rawValue `json:"beta3Year"`
				TrailingEps              *rawValue `json:"trailingEps"`
				ForwardEps               *rawValue `json:"forwardEps"`
				PegRatio                 *rawValue `json:"pegRatio"`
				BookValue                *rawValue `json:"bookValue"`
				PriceToBook              *rawValue `json:"priceToBook"`
				SharesOutstanding        *rawValue `json:"sharesOutstanding"`
				ImpliedSharesOutstanding *rawValue `json:"impliedSharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			FinancialData *struct {
				CurrentPrice    *rawValue `json:"currentPrice"`
				ReturnOnEquity  *rawValue `json:"returnOnEquity"`
				ReturnOnAssets  *rawValue `json:"returnOnAssets"`
				DebtToEquity    *rawValue `json:"debtToEquity"`
				RevenuePerShare *rawValue `json:"revenuePerShare"`
				EarningsGrowth  *rawValue `json:"earningsGrowth"`
				RevenueGrowth   *rawValue `json:"revenueGrowth"`
			} `json:"financialData"`
			FundPerformance *struct {
				TrailingReturns struct {
					FiveYear *rawValue `json:"fiveYear"`
				} `json:"trailingReturns"`
			} `json:"fundPerformance"`
			EarningsTrend *struct {
				Trend []struct {
					Period string    `json:"period"`
					Growth *rawValue `json:"growth"`
					RevenueEstimate struct {
						Growth *rawValue `json:"growth"`
					} `json:"revenueEstimate"`
				} `json:"trend"`
			} `json:"earningsTrend"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

var quoteModules = strings.Join([]string{
	"price",
	"summaryProfile",
	"assetProfile",
	"summaryDetail",
	"defaultKeyStatistics",
	"financialData",
	"fundPerformance",
	"earningsTrend",
}, ",")

// CompanyInfo fetches and flattens the quote summary modules.
func (c *Client) CompanyInfo(ctx context.Context, ticker string) (*CompanyInfo, []GrowthEstimate, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(quoteModules))

	var resp quoteSummaryResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, nil, fmt.Errorf("quote %s: %s", ticker, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, nil, fmt.Errorf("quote %s: empty result", ticker)
	}
	res := resp.QuoteSummary.Result[0]

	info := &CompanyInfo{}
	if p := res.Price; p != nil {
		info.Symbol = p.Symbol
		info.LongName = p.LongName
		info.Currency = p.Currency
		info.Exchange = p.Exchange
		info.QuoteType = p.QuoteType
		info.RegularMarketPrice = p.RegularMarketPrice.ptr()
		info.RegularMarketChange = p.RegularMarketChange.orZero()
		info.RegularMarketChangePercent = p.RegularMarketChangePercent.orZero()
		info.MarketCap = p.MarketCap.ptr()
	}
	if sp := res.SummaryProfile; sp != nil {
		info.Sector = sp.Sector
		info.Industry = sp.Industry
		info.Country = sp.Country
		info.Description = sp.LongBusinessSummary
	}
	if ap := res.AssetProfile; ap != nil {
		for _, officer := range ap.CompanyOfficers {
			if strings.Contains(officer.Title, "CEO") || strings.Contains(officer.Title, "Chief Executive") {
				info.CEO = officer.Name
				break
			}
		}
	}
	if sd := res.SummaryDetail; sd != nil {
		info.Beta = sd.Beta.ptr()
		info.TrailingPE = sd.TrailingPE.ptr()
		info.ForwardPE = sd.ForwardPE.ptr()
		info.DividendYield = sd.DividendYield.ptr()
	}
	if ks := res.DefaultKeyStatistics; ks != nil {
		if info.Beta == nil {
			info.Beta = ks.Beta.ptr()
		}
		info.Beta3Year = ks.Beta3Year.ptr()
		info.TrailingEPS = ks.TrailingEps.ptr()
		info.ForwardEPS = ks.ForwardEps.ptr()
		info.PegRatio = ks.PegRatio.ptr()
		info.BookValue = ks.BookValue.ptr()
		info.PriceToBook = ks.PriceToBook.ptr()
		info.SharesOutstanding = ks.SharesOutstanding.ptr()
		info.ImpliedSharesOutstanding = ks.ImpliedSharesOutstanding.ptr()
	}
	if fd := res.FinancialData; fd != nil {
		info.CurrentPrice = fd.CurrentPrice.ptr()
		info.ReturnOnEquity = fd.ReturnOnEquity.ptr()
		info.ReturnOnAssets = fd.ReturnOnAssets.ptr()
		info.DebtToEquity = fd.DebtToEquity.ptr()
		info.RevenuePerShare = fd.RevenuePerShare.ptr()
		info.EarningsGrowth = fd.EarningsGrowth.ptr()
		info.RevenueGrowth = fd.RevenueGrowth.ptr()
	}
	if fp := res.FundPerformance; fp != nil {
		info.FiveYearAverageReturn = fp.TrailingReturns.FiveYear.ptr()
	}

	var estimates []GrowthEstimate
	if et := res.EarningsTrend; et != nil {
		for _, row := range et.Trend {
			estimates = append(estimates, GrowthEstimate{
				Period:        row.Period,
				Growth:        row.Growth.ptr(),
				RevenueGrowth: row.RevenueEstimate.Growth.ptr(),
			})
		}
	}
	return info, estimates, nil
}

// exchangeNames maps the provider's exchange codes to display names.
var exchangeNames = map[string]string{
	"NMS": "NASDAQ",
	"NGM": "NASDAQ",
	"NCM": "NASDAQ",
	"NYQ": "NYSE",
	"ASE": "AMEX",
	"PNK": "OTC",
	"PCX": "NYSE Arca",
	"OPR": "Option",
}

// ExchangeName resolves an exchange code, falling back to the code
// itself for unmapped venues.
func ExchangeName(code string) string {
	if name, ok := exchangeNames[code]; ok {
		return name
	}
	return code
}
