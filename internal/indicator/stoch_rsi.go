package indicator

// StochRSI holds the stochastic transform of an RSI series
type StochRSI struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// CalculateStochRSI calculates Stochastic RSI from an RSI series.
// %K compares the last RSI to the min/max of the trailing `period` values.
// %D averages up to three %K readings taken against the `period` values before each point.
func CalculateStochRSI(rsiValues []float64, period int) StochRSI {
	if period < 1 || len(rsiValues) < period {
		return StochRSI{K: 50, D: 50}
	}

	k := stochastic(rsiValues[len(rsiValues)-1], rsiValues[len(rsiValues)-period:])

	var kValues []float64
	for i := period; i < len(rsiValues); i++ {
		kValues = append(kValues, stochastic(rsiValues[i], rsiValues[i-period:i]))
	}

	if len(kValues) == 0 {
		return StochRSI{K: k, D: k}
	}

	if len(kValues) > 3 {
		kValues = kValues[len(kValues)-3:]
	}
	sum := 0.0
	for _, v := range kValues {
		sum += v
	}

	return StochRSI{K: k, D: sum / float64(len(kValues))}
}

func stochastic(value float64, window []float64) float64 {
	minVal, maxVal := window[0], window[0]
	for _, v := range window[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	if maxVal-minVal == 0 {
		return 50 // flat window
	}
	return ((value - minVal) / (maxVal - minVal)) * 100
}
