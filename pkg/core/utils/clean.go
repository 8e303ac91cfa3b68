package utils

import "math"

// CleanNaN walks a decoded JSON-like value and replaces NaN and Inf
// floats with nil. JSON has no representation for either, so they must
// be scrubbed before any payload is serialized.
func CleanNaN(v interface{}) interface{} {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case float32:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return val
	case map[string]interface{}:
		for k, item := range val {
			val[k] = CleanNaN(item)
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = CleanNaN(item)
		}
		return val
	default:
		return v
	}
}
