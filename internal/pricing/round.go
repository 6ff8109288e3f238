package pricing

import "math"

// round rounds half toward positive infinity, so -2.5 becomes -2.
func round(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f := math.Floor(x)
	if x-f >= 0.5 {
		f++
	}
	return f
}

func isFalsy(x float64) bool {
	return x == 0 || math.IsNaN(x)
}
