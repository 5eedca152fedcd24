package indicator

import (
	"math"

	"signalscope-go/internal/model"
)

// CalculateTrueRange returns the true range of every candle after the first
func CalculateTrueRange(candles []model.Candle) []float64 {
	if len(candles) < 2 {
		return []float64{}
	}

	trValues := make([]float64, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		high := candles[i].High
		low := candles[i].Low
		prevClose := candles[i-1].Close

		tr1 := high - low
		tr2 := math.Abs(high - prevClose)
		tr3 := math.Abs(low - prevClose)

		trValues[i-1] = math.Max(tr1, math.Max(tr2, tr3))
	}
	return trValues
}

// CalculateATR calculates the Average True Range series.
// The first value is the mean of the first `period` true ranges; later values
// are smoothed with multiplier 1/period.
func CalculateATR(candles []model.Candle, period int) []float64 {
	trValues := CalculateTrueRange(candles)
	if period < 1 || len(trValues) < period {
		return []float64{}
	}

	sumTR := 0.0
	for i := 0; i < period; i++ {
		sumTR += trValues[i]
	}
	currentATR := sumTR / float64(period)

	atr := make([]float64, 0, len(trValues)-period+1)
	atr = append(atr, currentATR)

	multiplier := 1 / float64(period)
	for i := period; i < len(trValues); i++ {
		currentATR = trValues[i]*multiplier + currentATR*(1-multiplier)
		atr = append(atr, currentATR)
	}

	return atr
}

// GetLastATR returns the most recent ATR value, or 0 without enough history
func GetLastATR(candles []model.Candle, period int) float64 {
	return last(CalculateATR(candles, period), 0)
}
