package indicator

// CalculateEMA calculates the Exponential Moving Average.
// The series is seeded with its first element rather than an SMA, so the output
// has one value per input element.
func CalculateEMA(closes []float64, period int) []float64 {
	if len(closes) == 0 || period < 1 {
		return []float64{}
	}

	ema := make([]float64, len(closes))
	multiplier := 2.0 / float64(period+1)

	ema[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		ema[i] = closes[i]*multiplier + ema[i-1]*(1-multiplier)
	}

	return ema
}

// CalculateSMA calculates the Simple Moving Average.
// Output length is len(closes)-period+1; empty when there is not enough data.
func CalculateSMA(closes []float64, period int) []float64 {
	if period < 1 || len(closes) < period {
		return []float64{}
	}

	sma := make([]float64, 0, len(closes)-period+1)
	for i := period - 1; i < len(closes); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += closes[j]
		}
		sma = append(sma, sum/float64(period))
	}
	return sma
}

// GetLastEMA returns the most recent EMA value
func GetLastEMA(closes []float64, period int) float64 {
	return last(CalculateEMA(closes, period), 0)
}

// GetLastSMA returns the most recent SMA value
func GetLastSMA(closes []float64, period int) float64 {
	return last(CalculateSMA(closes, period), 0)
}

func last(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	return values[len(values)-1]
}
