package math

// CalculateMomentum returns the difference between the last close and the close
// `period` bars earlier, or 0 without enough history
func CalculateMomentum(closes []float64, period int) float64 {
	if period <= 0 || len(closes) <= period {
		return 0
	}

	current := closes[len(closes)-1]
	past := closes[len(closes)-1-period]

	return current - past
}

// CalculateROC calculates Rate of Change over `period` bars as a percentage
func CalculateROC(closes []float64, period int) float64 {
	if period <= 0 || len(closes) <= period {
		return 0
	}

	current := closes[len(closes)-1]
	past := closes[len(closes)-1-period]

	return CalculatePercentageChange(past, current)
}

// Sign maps a value to -1, 0 or +1
func Sign(value float64) int {
	switch {
	case value > 0:
		return 1
	case value < 0:
		return -1
	}
	return 0
}
