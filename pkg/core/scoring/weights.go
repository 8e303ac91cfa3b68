package scoring

// Weight tables per company profile. Each sums to 100 for the criteria
// set that profile produces; aggregation recomputes the max from the
// criteria actually present so a missing line never inflates the score.

var weightsCCC = map[string]float64{
	CritHistoricalTrend: 15,
	CritNetIncome:       5,
	CritOperatingIncome: 5,
	CritOperatingCF:     5,
	CritRevenue:         10,
	CritGrossMargin:     10,
	CritNetMargin:       5,
	CritROE:             5,
	CritROIC:            15,
	CritRevenueVsAR:     1,
	CritCCC:             3,
	CritMoat:            20,
	CritDebtEBITDA:      5,
	CritDebtServicing:   1,
	CritCurrentRatio:    5,
}

var weightsREIT = map[string]float64{
	CritHistoricalTrend: 10,
	CritNetIncome:       3,
	CritOperatingIncome: 3,
	CritOperatingCF:     3,
	CritRevenue:         3,
	CritGrossMargin:     5,
	CritNetMargin:       5,
	CritROE:             10,
	CritROIC:            15,
	CritRevenueVsAR:     4,
	CritMoat:            5,
	CritDebtEBITDA:      15,
	CritDebtServicing:   15,
	CritCurrentRatio:    5,
	CritGearing:         5,
}

var weightsStandard = map[string]float64{
	CritHistoricalTrend: 5,
	CritNetIncome:       10,
	CritOperatingIncome: 10,
	CritOperatingCF:     10,
	CritRevenue:         5,
	CritGrossMargin:     10,
	CritNetMargin:       5,
	CritROE:             15,
	CritROIC:            15,
	CritRevenueVsAR:     5,
	CritMoat:            20,
	CritDebtEBITDA:      5,
	CritDebtServicing:   2,
	CritCurrentRatio:    3,
}

func weightsFor(isREIT, hasInventory bool) map[string]float64 {
	switch {
	case isREIT:
		return weightsREIT
	case hasInventory:
		return weightsCCC
	default:
		return weightsStandard
	}
}

func aggregate(criteria []Criterion, weights map[string]float64) (score, maxScore float64) {
	for _, c := range criteria {
		w := weights[c.Name]
		maxScore += w
		if c.Status == "Pass" {
			score += w
		}
	}
	return score, maxScore
}
