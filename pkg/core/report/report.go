// Package report assembles the full per-ticker response payload. It
// fans out the upstream fetches, runs the numeric core over the
// results, and shapes everything for JSON serialization.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"stock_insight/pkg/core/fundamentals"
	"stock_insight/pkg/core/marketdata"
	"stock_insight/pkg/core/ratios"
	"stock_insight/pkg/core/scoring"
	"stock_insight/pkg/core/series"
	"stock_insight/pkg/core/support"
	"stock_insight/pkg/core/utils"
	"stock_insight/pkg/core/valuation"
)

// ErrNotFound means the provider returned no price data for the ticker.
var ErrNotFound = errors.New("ticker not found")

const (
	fetchTimeout = 45 * time.Second
	newsCount    = 8
)

// Builder runs stock report assembly against the market data client.
type Builder struct {
	market *marketdata.Client
	growth valuation.GrowthSource
	log    zerolog.Logger
}

func NewBuilder(market *marketdata.Client, growth valuation.GrowthSource, log zerolog.Logger) *Builder {
	return &Builder{
		market: market,
		growth: growth,
		log:    log.With().Str("component", "report").Logger(),
	}
}

// fetched holds the results of the upstream fan-out. Each fetch fails
// independently; a nil table or empty slice stands in for the failure.
type fetched struct {
	info      *marketdata.CompanyInfo
	estimates []marketdata.GrowthEstimate

	financials   *series.Table
	balanceSheet *series.Table
	cashflow     *series.Table

	qFinancials   *series.Table
	qBalanceSheet *series.Table
	qCashflow     *series.Table

	calendar *marketdata.CompanyCalendar
	news     []marketdata.NewsItem

	history  []marketdata.Bar
	intraday []marketdata.Bar
	weekly5Y []marketdata.Bar
	daily1Y  []marketdata.Bar
}

// StockReport builds the full payload for one ticker.
func (b *Builder) StockReport(ctx context.Context, ticker string) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	info, estimates, err := b.market.CompanyInfo(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("company info for %s: %w", ticker, err)
	}
	if info == nil || !info.HasPrice() {
		return nil, ErrNotFound
	}

	f := b.fetchAll(ctx, ticker, info.IsETF())
	f.info = info
	f.estimates = estimates

	return b.assemble(ctx, ticker, f), nil
}

// fetchAll issues the remaining upstream fetches concurrently. Failed
// fetches are logged and left at their zero value; ETFs skip statement
// tables entirely since the provider has none for funds.
func (b *Builder) fetchAll(ctx context.Context, ticker string, isETF bool) *fetched {
	f := &fetched{}
	var wg sync.WaitGroup

	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				b.log.Warn().Str("ticker", ticker).Str("fetch", name).Err(err).Msg("upstream fetch failed")
			}
		}()
	}

	if !isETF {
		run("financials", func() error {
			var err error
			f.financials, err = b.market.Statements(ctx, ticker, marketdata.StatementIncome, marketdata.Annual)
			return err
		})
		run("balance_sheet", func() error {
			var err error
			f.balanceSheet, err = b.market.Statements(ctx, ticker, marketdata.StatementBalance, marketdata.Annual)
			return err
		})
		run("cashflow", func() error {
			var err error
			f.cashflow, err = b.market.Statements(ctx, ticker, marketdata.StatementCashflow, marketdata.Annual)
			return err
		})
		run("quarterly_financials", func() error {
			var err error
			f.qFinancials, err = b.market.Statements(ctx, ticker, marketdata.StatementIncome, marketdata.Quarterly)
			return err
		})
		run("quarterly_balance_sheet", func() error {
			var err error
			f.qBalanceSheet, err = b.market.Statements(ctx, ticker, marketdata.StatementBalance, marketdata.Quarterly)
			return err
		})
		run("quarterly_cashflow", func() error {
			var err error
			f.qCashflow, err = b.market.Statements(ctx, ticker, marketdata.StatementCashflow, marketdata.Quarterly)
			return err
		})
		run("calendar", func() error {
			var err error
			f.calendar, err = b.market.Calendar(ctx, ticker)
			return err
		})
		run("news", func() error {
			var err error
			f.news, err = b.market.News(ctx, ticker, newsCount)
			return err
		})
	}

	run("history", func() error {
		var err error
		f.history, _, err = b.market.HistoryFrom(ctx, ticker, time.Now().AddDate(-25, 0, 0), false)
		return err
	})
	run("intraday", func() error {
		var err error
		f.intraday, _, err = b.market.History(ctx, ticker, "5d", "15m", false)
		return err
	})
	run("weekly_5y", func() error {
		var err error
		f.weekly5Y, _, err = b.market.History(ctx, ticker, "5y", "1wk", false)
		return err
	})
	run("daily_1y", func() error {
		var err error
		f.daily1Y, _, err = b.market.History(ctx, ticker, "1y", "1d", false)
		return err
	})

	wg.Wait()
	return f
}

func (b *Builder) assemble(ctx context.Context, ticker string, f *fetched) map[string]interface{} {
	info := f.info

	// TTM snapshots from the quarterly tables.
	ttmIncome := fundamentals.AggregateTTM(f.qFinancials, fundamentals.Flow)
	ttmCashflow := fundamentals.AggregateTTM(f.qCashflow, fundamentals.Flow)
	ttmBalance := fundamentals.AggregateTTM(f.qBalanceSheet, fundamentals.PointInTime)

	ratioFallbacks := ratios.Fallbacks{}
	if info.ReturnOnEquity != nil {
		ratioFallbacks.ReturnOnEquity = *info.ReturnOnEquity
	}
	ttmRatios := ratios.ComputeTTM(ttmIncome, ttmBalance, ttmCashflow, ratioFallbacks)

	stmts := fundamentals.ExtractAll(f.financials, f.balanceSheet, f.cashflow)
	grossMargin := ratios.GrossMargin(stmts.Revenue, stmts.CostOfRevenue)
	netMargin := ratios.NetMargin(stmts.NetIncome, stmts.Revenue)
	revenueGrowth := stmts.Revenue.YoYGrowth()

	cccSeries, cccReason := ratios.CashConversionCycle(f.financials, f.balanceSheet, ttmBalance)
	hasInventory := cccReason == ""

	isREIT := strings.Contains(info.Industry, "REIT") || strings.Contains(info.Sector, "Real Estate")

	beta := b.resolveBeta(ctx, ticker, info)

	historyDates, historyCloses := splitBars(f.history)
	score := scoring.Evaluate(scoring.ChecklistInputs{
		HistoryDates:  historyDates,
		HistoryCloses: historyCloses,
		Statements:    stmts,
		GrossMargin:   grossMargin,
		NetMargin:     netMargin,
		RevenueGrowth: revenueGrowth,
		Ratios:        ttmRatios,
		CCC:           cccSeries,
		HasInventory:  hasInventory,
		IsREIT:        isREIT,
		Now:           time.Now(),
	})

	val := valuation.Valuate(ctx, valuation.Inputs{
		Ticker:           ticker,
		Profile:          b.buildProfile(info, beta),
		Statements:       stmts,
		Financials:       f.financials,
		BalanceSheet:     f.balanceSheet,
		Cashflow:         f.cashflow,
		History:          toPricePoints(f.history),
		RevenueEstimates: toRevenueEstimates(f.estimates),
	}, b.growth)

	levels := support.Levels(toSupportBars(f.weekly5Y), toSupportBars(f.daily1Y))

	payload := map[string]interface{}{
		"overview": b.buildOverview(info, beta),
		"growth": map[string]interface{}{
			"revenueGrowth":  revenueGrowth,
			"revenueHistory": revenueHistory(stmts.Revenue),
			"estimates":      f.estimates,
			"tables": map[string]interface{}{
				"total_revenue":       formatSeriesTable(stmts.Revenue),
				"net_income":          formatSeriesTable(stmts.NetIncome),
				"operating_income":    formatSeriesTable(stmts.OperatingIncome),
				"operating_cash_flow": formatSeriesTable(stmts.OperatingCashFlow),
				"gross_margin":        formatSeriesTable(grossMargin),
				"net_margin":          formatSeriesTable(netMargin),
			},
		},
		"profitability": map[string]interface{}{
			"grossMargin":                grossMargin.NewestOrZero(),
			"netMargin":                  netMargin.NewestOrZero(),
			"roe":                        ttmRatios.ROE,
			"roa":                        optional(info.ReturnOnAssets),
			"roic":                       ttmRatios.ROIC,
			"ccc_history":                formatSeriesTable(cccSeries),
			"ccc_not_applicable_reason":  cccReason,
			"tables": map[string]interface{}{
				"accounts_receivable": formatSeriesTable(stmts.AccountsReceivable),
				"total_revenue":       formatSeriesTable(stmts.Revenue),
			},
		},
		"debt": map[string]interface{}{
			"debtToEbitda":       ttmRatios.DebtToEBITDA,
			"currentRatio":       ttmRatios.CurrentRatio,
			"debtServicingRatio": ttmRatios.DebtServicingRatio,
			"gearingRatio":       ttmRatios.GearingRatio,
			"isREIT":             isREIT,
		},
		"history":          historyWithSMAs(f.history),
		"intraday_history": intradayHistory(f.intraday),
		"moat": map[string]interface{}{
			"type":    score.Moat.Type,
			"details": "High ROE and Margins indicate potential moat",
		},
		"valuation": val,
		"financials": map[string]interface{}{
			"income_statement": formatStatementTable(f.financials, ttmIncome),
			"balance_sheet":    formatStatementTable(f.balanceSheet, ttmBalance),
			"cash_flow":        formatStatementTable(f.cashflow, ttmCashflow),
			"growth_estimates": f.estimates,
		},
		"calendar":           calendarPayload(f.calendar),
		"news":               newsPayload(f.news),
		"sharesOutstanding":  optional(info.SharesOutstanding),
		"support_resistance": map[string]interface{}{"levels": levels},
		"score": map[string]interface{}{
			"total":    score.Score,
			"max":      score.MaxScore,
			"criteria": score.Criteria,
		},
		"raw_growth_estimates": f.estimates,
	}
	return utils.CleanNaN(payload).(map[string]interface{})
}

// resolveBeta walks the fallback chain: provider beta, three year fund
// beta, manual computation against the index.
func (b *Builder) resolveBeta(ctx context.Context, ticker string, info *marketdata.CompanyInfo) float64 {
	if info.Beta != nil {
		return *info.Beta
	}
	if info.Beta3Year != nil {
		return *info.Beta3Year
	}
	return b.market.ManualBeta(ctx, ticker)
}

func (b *Builder) buildOverview(info *marketdata.CompanyInfo, beta float64) map[string]interface{} {
	sector := info.Sector
	industry := info.Industry
	if sector == "" {
		sector = "Unknown"
		if info.IsETF() {
			sector = "ETF"
		}
	}
	if industry == "" {
		industry = "Unknown"
		if info.IsETF() {
			industry = "ETF"
		}
	}

	return map[string]interface{}{
		"name":            info.LongName,
		"symbol":          info.Symbol,
		"price":           info.Price(),
		"change":          info.RegularMarketChange,
		"changePercent":   info.RegularMarketChangePercent,
		"exchange":        marketdata.ExchangeName(info.Exchange),
		"currency":        info.Currency,
		"sector":          sector,
		"industry":        industry,
		"description":     info.Description,
		"marketCap":       optional(info.MarketCap),
		"beta":            beta,
		"peRatio":         optional(info.TrailingPE),
		"pegRatio":        optional(info.PegRatio),
		"eps":             optional(info.TrailingEPS),
		"dividendYield":   optional(info.DividendYield),
		"quoteType":       info.QuoteType,
		"is_etf":          info.IsETF(),
		"ceo":             ceoOrNA(info.CEO),
		"valuationStatus": quickValuationStatus(info.TrailingPE, info.ForwardPE),
	}
}

func (b *Builder) buildProfile(info *marketdata.CompanyInfo, beta float64) valuation.Profile {
	return valuation.Profile{
		Sector:                info.Sector,
		Industry:              info.Industry,
		Country:               info.Country,
		QuoteType:             info.QuoteType,
		CurrentPrice:          info.Price(),
		SharesOutstanding:     orZero(info.SharesOutstanding),
		Beta:                  beta,
		TrailingEPS:           orZero(info.TrailingEPS),
		BookValue:             orZero(info.BookValue),
		PriceToBook:           orZero(info.PriceToBook),
		RevenuePerShare:       orZero(info.RevenuePerShare),
		EarningsGrowth:        info.EarningsGrowth,
		RevenueGrowth:         info.RevenueGrowth,
		FiveYearAverageReturn: info.FiveYearAverageReturn,
	}
}

// quickValuationStatus is the coarse P/E screen shown in the overview;
// the full verdict comes from the valuation engine.
func quickValuationStatus(trailingPE, forwardPE *float64) string {
	switch {
	case trailingPE != nil && forwardPE != nil:
		pe, fpe := *trailingPE, *forwardPE
		if pe < fpe*0.85 {
			return "Undervalued"
		}
		if pe > fpe*1.15 {
			return "Overvalued"
		}
		return "Fairly Valued"
	case trailingPE != nil:
		pe := *trailingPE
		if pe < 15 {
			return "Undervalued"
		}
		if pe > 25 {
			return "Overvalued"
		}
		return "Fairly Valued"
	default:
		return "Unknown"
	}
}

func ceoOrNA(name string) string {
	if name == "" {
		return "N/A"
	}
	return name
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func splitBars(bars []marketdata.Bar) ([]time.Time, []float64) {
	dates := make([]time.Time, len(bars))
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		dates[i] = bar.Date
		closes[i] = bar.Close
	}
	return dates, closes
}

func toPricePoints(bars []marketdata.Bar) []valuation.PricePoint {
	out := make([]valuation.PricePoint, len(bars))
	for i, bar := range bars {
		out[i] = valuation.PricePoint{Date: bar.Date, Close: bar.Close}
	}
	return out
}

func toSupportBars(bars []marketdata.Bar) []support.Bar {
	out := make([]support.Bar, len(bars))
	for i, bar := range bars {
		out[i] = support.Bar{Date: bar.Date, Close: bar.Close, Low: bar.Low}
	}
	return out
}

func toRevenueEstimates(estimates []marketdata.GrowthEstimate) []valuation.RevenueEstimate {
	out := make([]valuation.RevenueEstimate, 0, len(estimates))
	for _, e := range estimates {
		out = append(out, valuation.RevenueEstimate{Period: e.Period, Growth: e.RevenueGrowth})
	}
	return out
}
