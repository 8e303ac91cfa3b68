package series

import (
	"math"

	"github.com/markcheno/go-talib"
)

// RollingMean computes a simple moving average over chronological values.
// Indexes before the window is filled are NaN (the SMA is undefined until
// `window` points exist).
func RollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 0 || len(values) < window {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	sma := talib.Sma(values, window)
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
		} else {
			out[i] = sma[i]
		}
	}
	return out
}
