// Package valuation implements the intrinsic value engine: six
// estimation methods computed side by side, a decision tree that
// recommends the method fitting the company's earnings profile, and the
// resulting over/under valuation status.
package valuation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"stock_insight/pkg/core/fundamentals"
	"stock_insight/pkg/core/series"
)

// Profile carries the company metadata the engine reads. Pointer fields
// distinguish "provider did not report it" from a true zero.
type Profile struct {
	Sector                string
	Industry              string
	Country               string
	QuoteType             string
	CurrentPrice          float64
	SharesOutstanding     float64
	Beta                  float64
	TrailingEPS           float64
	BookValue             float64
	PriceToBook           float64
	RevenuePerShare       float64
	EarningsGrowth        *float64
	RevenueGrowth         *float64
	FiveYearAverageReturn *float64
}

// PricePoint is one close on the daily history, chronological order.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// RevenueEstimate is one row of the provider's forward revenue table.
type RevenueEstimate struct {
	Period string
	Growth *float64
}

// Inputs bundles everything Valuate reads for one ticker.
type Inputs struct {
	Ticker           string
	Profile          Profile
	Statements       fundamentals.StatementSeries
	Financials       *series.Table
	BalanceSheet     *series.Table
	Cashflow         *series.Table
	History          []PricePoint
	RevenueEstimates []RevenueEstimate
}

// MethodResult is one method's standalone estimate.
type MethodResult struct {
	Method         string            `json:"method"`
	IntrinsicValue float64           `json:"intrinsicValue"`
	Assumptions    map[string]string `json:"assumptions"`
}

// RawAssumptions exposes the unformatted figures behind the recommended
// method for client-side recomputation.
type RawAssumptions struct {
	BaseValue          float64 `json:"base_value"`
	TotalDebt          float64 `json:"total_debt"`
	CashAndEquivalents float64 `json:"cash_and_equivalents"`
	SharesOutstanding  float64 `json:"shares_outstanding"`
	SalesPerShare      float64 `json:"sales_per_share"`
	BookValue          float64 `json:"book_value"`
}

// Result is the full valuation verdict.
type Result struct {
	Method            string            `json:"method"`
	IntrinsicValue    float64           `json:"intrinsicValue"`
	CurrentPrice      float64           `json:"currentPrice"`
	DifferencePercent float64           `json:"differencePercent"`
	Status            string            `json:"status"`
	Assumptions       map[string]string `json:"assumptions"`
	Raw               RawAssumptions    `json:"raw_assumptions"`
	GrowthRateNext5Y  *float64          `json:"growthRateNext5Y"`
	GrowthNote        string            `json:"growthNote"`
	AllMethods        []MethodResult    `json:"allMethods"`
}

// Valuate computes every method, recommends one, and derives the
// valuation status from the price gap. A missing current price is the
// only unrecoverable input.
func Valuate(ctx context.Context, in Inputs, growthSrc GrowthSource) Result {
	p := in.Profile
	if p.CurrentPrice == 0 {
		return Result{
			Status:      "Error",
			Method:      "N/A",
			Assumptions: map[string]string{},
			GrowthNote:  "Error: Missing price or share data",
		}
	}
	shares := p.SharesOutstanding
	if shares <= 0 {
		shares = 1
	}

	growth, note := DeriveGrowth(ctx, in.Ticker, p, growthSrc)
	y1to5, y6to10, y11to20 := ClampGrowth(growth, p.Country)
	beta := p.Beta
	if beta == 0 {
		beta = 1.0
	}
	rate := DiscountRate(beta, p.Country)

	totalDebt := in.BalanceSheet.ValueOrZero("Total Debt", 0)
	cash := in.BalanceSheet.ValueOrZero("Cash And Cash Equivalents", 0)
	if !in.BalanceSheet.HasRow("Cash And Cash Equivalents") {
		cash = in.BalanceSheet.ValueOrZero("Cash Cash Equivalents And Short Term Investments", 0)
	}

	currentNI := in.Statements.NetIncome.NewestOrZero()
	currentOCF := in.Statements.OperatingCashFlow.NewestOrZero()
	capex := math.Abs(in.Cashflow.Extract("Capital Expenditure", "Capital Expenditures").NewestOrZero())

	dcfAssumptions := func(metricName string, base float64) map[string]string {
		return map[string]string{
			"Current " + metricName:  fmt.Sprintf("$%.2fB", base/1e9),
			"Growth Rate (Yr 1-5)":   fmt.Sprintf("%.2f%%", y1to5*100),
			"Growth Note":            note,
			"Growth Rate (Yr 6-10)":  fmt.Sprintf("%.2f%%", y6to10*100),
			"Growth Rate (Yr 11-20)": fmt.Sprintf("%.2f%%", y11to20*100),
			"Discount Rate":          fmt.Sprintf("%.2f%%", rate*100),
			"Total Debt":             fmt.Sprintf("$%.2fB", totalDebt/1e9),
			"Cash & Equivalents":     fmt.Sprintf("$%.2fB", cash/1e9),
			"Shares Outstanding":     fmt.Sprintf("%.2fB", shares/1e9),
			"Beta":                   fmt.Sprintf("%.2f", beta),
		}
	}
	dcf := func(name, metricName string, base float64) MethodResult {
		equityValue := projectAndDiscount(base, y1to5, y6to10, y11to20, rate) + cash - totalDebt
		return MethodResult{
			Method:         name,
			IntrinsicValue: equityValue / shares,
			Assumptions:    dcfAssumptions(metricName, base),
		}
	}

	fcfBase := currentOCF - capex

	// Mean price to book.
	bookValue := p.BookValue
	if bookValue == 0 {
		bookValue = in.BalanceSheet.ValueOrZero("Stockholders Equity", 0) / shares
	}
	meanPB, ok := historicalMeanPB(in.BalanceSheet, in.Financials, in.History)
	if !ok {
		if p.PriceToBook > 0 {
			meanPB = p.PriceToBook
		} else {
			meanPB = 1.5
		}
	}

	// Price to sales growth, in percentage units.
	salesPerShare := p.RevenuePerShare
	if salesPerShare == 0 {
		salesPerShare = in.Statements.Revenue.NewestOrZero() / shares
	}
	salesGrowthWhole := y1to5 * 100
	for _, est := range in.RevenueEstimates {
		if est.Period == "+1y" {
			if est.Growth != nil {
				salesGrowthWhole = *est.Growth * 100
			}
			break
		}
	}

	graham := grahamNumber(p.TrailingEPS, bookValue)

	all := []MethodResult{
		dcf(MethodDFCF, "Free Cash Flow", fcfBase),
		dcf(MethodDOCF, "Operating Cash Flow", currentOCF),
		dcf(MethodDNI, "Net Income", currentNI),
		{
			Method:         MethodPB,
			IntrinsicValue: bookValue * meanPB,
			Assumptions: map[string]string{
				"Current Book Value Per Share": fmt.Sprintf("$%.2f", bookValue),
				"Mean PB Ratio":                fmt.Sprintf("%.2f", meanPB),
				"Growth Note":                  note,
			},
		},
		{
			Method:         MethodPSG,
			IntrinsicValue: salesPerShare * salesGrowthWhole * psgConstant,
			Assumptions: map[string]string{
				"Sales Per Share (TTM)":  fmt.Sprintf("$%.2f", salesPerShare),
				"Projected Sales Growth": fmt.Sprintf("%.2f%%", salesGrowthWhole),
				"Fair PSG Constant":      "0.20",
				"Growth Note":            note,
			},
		},
		{
			Method:         MethodGraham,
			IntrinsicValue: graham,
			Assumptions: map[string]string{
				"Trailing EPS":         fmt.Sprintf("$%.2f", p.TrailingEPS),
				"Book Value Per Share": fmt.Sprintf("$%.2f", bookValue),
				"Graham Constant":      "22.5",
			},
		},
	}

	recommended := selectMethod(in, currentNI, currentOCF)
	var chosen MethodResult
	for _, m := range all {
		if m.Method == recommended {
			chosen = m
			break
		}
	}

	diffPercent := 0.0
	if chosen.IntrinsicValue != 0 && !math.IsNaN(chosen.IntrinsicValue) {
		diffPercent = p.CurrentPrice/chosen.IntrinsicValue - 1
	}
	status := "Fairly Valued"
	if diffPercent > 0.15 {
		status = "Overvalued"
	} else if diffPercent < -0.15 {
		status = "Undervalued"
	}

	dcfBase := fcfBase
	switch recommended {
	case MethodDOCF:
		dcfBase = currentOCF
	case MethodDNI:
		dcfBase = currentNI
	}

	return Result{
		Method:            recommended,
		IntrinsicValue:    chosen.IntrinsicValue,
		CurrentPrice:      p.CurrentPrice,
		DifferencePercent: diffPercent,
		Status:            status,
		Assumptions:       chosen.Assumptions,
		Raw: RawAssumptions{
			BaseValue:          cleanNumeric(dcfBase),
			TotalDebt:          cleanNumeric(totalDebt),
			CashAndEquivalents: cleanNumeric(cash),
			SharesOutstanding:  cleanNumeric(shares),
			SalesPerShare:      cleanNumeric(salesPerShare),
			BookValue:          cleanNumeric(bookValue),
		},
		GrowthRateNext5Y: &y1to5,
		GrowthNote:       note,
		AllMethods:       all,
	}
}

// selectMethod runs the recommendation decision tree: financials get
// price to book, pre-profit growth names get price to sales growth, and
// the DCF family splits on which series are consistent.
func selectMethod(in Inputs, currentNI, currentOCF float64) string {
	p := in.Profile
	isFinancial := strings.Contains(p.Sector, "Financial") ||
		strings.Contains(p.Industry, "Bank") ||
		strings.Contains(p.Industry, "Insurance")
	if isFinancial {
		return MethodPB
	}

	rev := in.Statements.Revenue
	revCAGR := 0.0
	if rev.Len() >= 3 {
		newest, oldest := rev.Values[0], rev.Values[rev.Len()-1]
		if oldest != 0 {
			revCAGR = math.Pow(newest/oldest, 1/float64(rev.Len())) - 1
		}
	}
	if revCAGR > 0.15 && (currentNI < 0 || currentOCF < 0) {
		return MethodPSG
	}

	revConsistent := isConsistent(rev)
	niConsistent := isConsistent(in.Statements.NetIncome)
	ocfConsistent := isConsistent(in.Statements.OperatingCashFlow)

	switch {
	case revConsistent && niConsistent && ocfConsistent:
		if currentOCF > 1.5*currentNI {
			return MethodDFCF
		}
		return MethodDOCF
	case revConsistent && niConsistent:
		return MethodDNI
	default:
		return MethodDFCF
	}
}

func cleanNumeric(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
