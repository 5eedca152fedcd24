package model

import "math"

// Candle represents one OHLCV bar. Time is the bar open time in unix seconds.
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume,omitempty"`
}

// EffectiveVolume returns the bar volume, reading a missing (non-positive) volume as 1
func (c Candle) EffectiveVolume() float64 {
	if c.Volume > 0 {
		return c.Volume
	}
	return 1
}

// Body returns the absolute open-close distance
func (c Candle) Body() float64 {
	return math.Abs(c.Close - c.Open)
}

// Range returns the high-low distance
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// UpperWick returns the distance between the high and the top of the body
func (c Candle) UpperWick() float64 {
	return c.High - math.Max(c.Open, c.Close)
}

// LowerWick returns the distance between the bottom of the body and the low
func (c Candle) LowerWick() float64 {
	return math.Min(c.Open, c.Close) - c.Low
}

func (c Candle) IsBullish() bool { return c.Close > c.Open }

func (c Candle) IsBearish() bool { return c.Close < c.Open }

// Closes extracts the close series
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// Volumes extracts the effective volume series
func Volumes(candles []Candle) []float64 {
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		volumes[i] = c.EffectiveVolume()
	}
	return volumes
}

// Tail returns the trailing n candles (or all of them when fewer exist)
func Tail(candles []Candle, n int) []Candle {
	if len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}

// HighLow returns the max high and min low of the given candles
func HighLow(candles []Candle) (high, low float64) {
	if len(candles) == 0 {
		return 0, 0
	}
	high = candles[0].High
	low = candles[0].Low
	for _, c := range candles[1:] {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	return high, low
}
