package valuation

import "strings"

// DiscountRate maps beta and country onto the discount rate step table.
// Rates step up with beta; China-domiciled entities carry a higher base
// for country risk. An unknown beta should be passed as 1.0.
func DiscountRate(beta float64, country string) float64 {
	if isChina(country) {
		switch {
		case beta < 0.8:
			return 0.08
		case beta < 1.0:
			return 0.09
		case beta < 1.2:
			return 0.10
		default:
			return 0.11
		}
	}

	switch {
	case beta < 0.85:
		return 0.054
	case beta < 0.95:
		return 0.057
	case beta < 1.05:
		return 0.060
	case beta < 1.15:
		return 0.063
	case beta < 1.25:
		return 0.066
	case beta < 1.35:
		return 0.069
	case beta < 1.45:
		return 0.072
	case beta < 1.55:
		return 0.075
	default:
		return 0.078
	}
}

func isChina(country string) bool {
	return strings.Contains(country, "China")
}
