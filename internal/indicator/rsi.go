package indicator

// CalculateRSI calculates the Relative Strength Index over every window of
// `period` consecutive price changes.
//
// Each window averages its gains and losses separately; a zero loss average is
// replaced by 1 in the ratio, which keeps small-priced uptrends well below 100.
// A window with neither gains nor losses reads as 50.
func CalculateRSI(closes []float64, period int) []float64 {
	if period < 1 || len(closes) < period+1 {
		return []float64{}
	}

	changes := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		changes[i-1] = closes[i] - closes[i-1]
	}

	rsi := make([]float64, 0, len(changes)-period+1)
	for end := period; end <= len(changes); end++ {
		var gains, losses float64
		for _, change := range changes[end-period : end] {
			if change > 0 {
				gains += change
			} else {
				losses -= change
			}
		}
		gains /= float64(period)
		losses /= float64(period)

		if gains == 0 && losses == 0 {
			rsi = append(rsi, 50)
			continue
		}

		denominator := losses
		if denominator == 0 {
			denominator = 1
		}
		rs := gains / denominator
		rsi = append(rsi, 100-(100/(1+rs)))
	}

	return rsi
}

// GetLastRSI returns the most recent RSI value, or 50 without enough history
func GetLastRSI(closes []float64, period int) float64 {
	return last(CalculateRSI(closes, period), 50)
}
