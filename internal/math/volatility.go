package math

import "math"

// CalculateVolatility returns the standard deviation of the trailing `period`
// simple returns, expressed as a percentage
func CalculateVolatility(closes []float64, period int) float64 {
	if len(closes) < 2 || period <= 0 {
		return 0
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}

	if len(returns) > period {
		returns = returns[len(returns)-period:]
	}

	return CalculateStandardDeviation(returns) * 100
}

// CalculateMean returns the arithmetic mean, 0 for an empty slice
func CalculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// CalculateStandardDeviation calculates the population standard deviation
func CalculateStandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := CalculateMean(values)

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}
