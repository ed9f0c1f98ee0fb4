package pure_utils

import "math"

func Clamp(v, low, high float64) float64 {
	return math.Max(low, math.Min(high, v))
}

// RoundTo rounds v to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
