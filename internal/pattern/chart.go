package pattern

import (
	"math"

	"signalscope-go/internal/indicator"
	internalmath "signalscope-go/internal/math"
	"signalscope-go/internal/model"
)

const (
	headShouldersMinCandles = 30
	headShouldersWindow     = 5
	shoulderTolerance       = 0.02

	doubleLookback  = 20
	doubleTolerance = 0.002
	doubleMinSpan   = 5

	flagLookback        = 15
	flagPoleBars        = 5
	flagMinPoleMove     = 0.02
	flagMaxConsolidated = 0.01
)

// detectHeadAndShoulders compares the last three ±5-bar peaks (or troughs for
// the inverse form). The head must be the extreme and the shoulders within 2%.
func detectHeadAndShoulders(candles []model.Candle) []Pattern {
	if len(candles) < headShouldersMinCandles {
		return nil
	}

	var peaks, troughs []float64
	for i := headShouldersWindow; i < len(candles)-headShouldersWindow; i++ {
		if indicator.IsSwingHigh(candles, i, headShouldersWindow) {
			peaks = append(peaks, candles[i].High)
		}
		if indicator.IsSwingLow(candles, i, headShouldersWindow) {
			troughs = append(troughs, candles[i].Low)
		}
	}

	if len(peaks) >= 3 {
		left, head, right := peaks[len(peaks)-3], peaks[len(peaks)-2], peaks[len(peaks)-1]
		if head > left && head > right && internalmath.CalculateRelativeDistance(left, right, left) < shoulderTolerance {
			return []Pattern{{
				Label:     "Head and Shoulders",
				Direction: Bearish,
				Strength:  StrengthExtreme,
				Neckline:  math.Min(left, right),
			}}
		}
	}

	if len(troughs) >= 3 {
		left, head, right := troughs[len(troughs)-3], troughs[len(troughs)-2], troughs[len(troughs)-1]
		if head < left && head < right && internalmath.CalculateRelativeDistance(left, right, left) < shoulderTolerance {
			return []Pattern{{
				Label:     "Inverse Head and Shoulders",
				Direction: Bullish,
				Strength:  StrengthExtreme,
				Neckline:  math.Max(left, right),
			}}
		}
	}

	return nil
}

// detectDoubles finds bars within 0.2% of the trailing 20-bar high (or low).
// Two or more touches spanning more than 5 bars form a Double Top (or Bottom).
func detectDoubles(candles []model.Candle) []Pattern {
	if len(candles) < doubleLookback {
		return nil
	}

	window := model.Tail(candles, doubleLookback)
	maxHigh, minLow := model.HighLow(window)
	if maxHigh == minLow {
		return nil // zero-range window, every bar would touch both extremes
	}

	var topIdx, bottomIdx []int
	for i, c := range window {
		if c.High >= maxHigh*(1-doubleTolerance) {
			topIdx = append(topIdx, i)
		}
		if c.Low <= minLow*(1+doubleTolerance) {
			bottomIdx = append(bottomIdx, i)
		}
	}

	if len(topIdx) >= 2 && topIdx[len(topIdx)-1]-topIdx[0] > doubleMinSpan {
		return []Pattern{{Label: "Double Top", Direction: Bearish, Strength: StrengthVeryHigh}}
	}
	if len(bottomIdx) >= 2 && bottomIdx[len(bottomIdx)-1]-bottomIdx[0] > doubleMinSpan {
		return []Pattern{{Label: "Double Bottom", Direction: Bullish, Strength: StrengthVeryHigh}}
	}
	return nil
}

// detectFlags splits the trailing 15 closes into a 5-bar pole and a 10-bar
// consolidation. A pole move over 2% followed by a range under 1% is a flag.
func detectFlags(candles []model.Candle) []Pattern {
	if len(candles) < flagLookback {
		return nil
	}

	closes := model.Closes(model.Tail(candles, flagLookback))
	poleStart, poleEnd := closes[0], closes[flagPoleBars-1]
	if poleStart == 0 {
		return nil
	}
	poleMove := (poleEnd - poleStart) / poleStart

	consolidation := closes[flagPoleBars:]
	lowest, highest := consolidation[0], consolidation[0]
	for _, c := range consolidation[1:] {
		lowest = math.Min(lowest, c)
		highest = math.Max(highest, c)
	}
	if lowest == 0 || (highest-lowest)/lowest >= flagMaxConsolidated {
		return nil
	}

	switch {
	case poleMove > flagMinPoleMove:
		return []Pattern{{Label: "Bullish Flag", Direction: Bullish, Strength: StrengthHigh}}
	case poleMove < -flagMinPoleMove:
		return []Pattern{{Label: "Bearish Flag", Direction: Bearish, Strength: StrengthHigh}}
	}
	return nil
}
