package indicator

import (
	internalmath "signalscope-go/internal/math"
)

// Bands holds the latest Bollinger Band values
type Bands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Width returns upper minus lower
func (b Bands) Width() float64 {
	return b.Upper - b.Lower
}

// Position returns where price sits inside the band, 0 at the lower band and 1
// at the upper band. A collapsed band reads as 0.5.
func (b Bands) Position(price float64) float64 {
	width := b.Width()
	if width == 0 {
		return 0.5
	}
	return (price - b.Lower) / width
}

// CalculateBollingerBands calculates Bollinger Bands using a population
// standard deviation and returns only the last window's bands
func CalculateBollingerBands(closes []float64, period int, stdDev float64) Bands {
	if period < 1 || len(closes) < period {
		return Bands{}
	}

	window := closes[len(closes)-period:]
	sma := internalmath.CalculateMean(window)
	std := internalmath.CalculateStandardDeviation(window)

	return Bands{
		Upper:  sma + (stdDev * std),
		Middle: sma,
		Lower:  sma - (stdDev * std),
	}
}
