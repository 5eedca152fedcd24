package math

import "math"

// CalculatePercentageChange calculates percentage change between two values
func CalculatePercentageChange(oldValue, newValue float64) float64 {
	if oldValue == 0 {
		return 0
	}
	return ((newValue - oldValue) / oldValue) * 100
}

// CalculateRelativeDistance returns |a-b|/base, 0 when base is 0
func CalculateRelativeDistance(a, b, base float64) float64 {
	if base == 0 {
		return 0
	}
	return math.Abs(a-b) / base
}

// Clamp bounds value to [lo, hi]
func Clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}
