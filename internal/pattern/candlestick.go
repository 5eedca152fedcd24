package pattern

import (
	"signalscope-go/internal/model"
)

// detectHammers looks at the last candle for a long-wick reversal.
// Hammer: lower wick > 2.5x body with an upper wick under 0.3x body.
// Shooting Star is the mirror.
func detectHammers(candles []model.Candle) []Pattern {
	last := candles[len(candles)-1]
	bodySize := last.Body()
	upperWick := last.UpperWick()
	lowerWick := last.LowerWick()

	var found []Pattern
	if lowerWick > bodySize*2.5 && upperWick < bodySize*0.3 {
		found = append(found, Pattern{Label: "Hammer (Strong)", Direction: Bullish, Strength: StrengthHigh})
	}
	if upperWick > bodySize*2.5 && lowerWick < bodySize*0.3 {
		found = append(found, Pattern{Label: "Shooting Star (Strong)", Direction: Bearish, Strength: StrengthHigh})
	}
	return found
}

// detectEngulfing checks whether the last body engulfs the previous opposite
// body and is at least 20% larger
func detectEngulfing(candles []model.Candle) []Pattern {
	last := candles[len(candles)-1]
	prev := candles[len(candles)-2]
	body := last.Body()
	prevBody := prev.Body()

	var found []Pattern
	// Bullish Engulfing: Prev Red, Current Green engulfs prev body
	if last.IsBullish() && prev.IsBearish() &&
		last.Open <= prev.Close && last.Close >= prev.Open &&
		body > prevBody*1.2 {
		found = append(found, Pattern{Label: "Bullish Engulfing", Direction: Bullish, Strength: StrengthHigh})
	}
	// Bearish Engulfing: Prev Green, Current Red engulfs prev body
	if last.IsBearish() && prev.IsBullish() &&
		last.Open >= prev.Close && last.Close <= prev.Open &&
		body > prevBody*1.2 {
		found = append(found, Pattern{Label: "Bearish Engulfing", Direction: Bearish, Strength: StrengthHigh})
	}
	return found
}

// detectStars checks the last three candles for Morning Star / Evening Star
func detectStars(candles []model.Candle) []Pattern {
	c1 := candles[len(candles)-3]
	c2 := candles[len(candles)-2]
	c3 := candles[len(candles)-1]

	smallMiddle := c2.Body() < c2.Range()*0.3
	firstMid := (c1.Open + c1.Close) / 2

	var found []Pattern
	// Morning Star: Big Red -> Small Body -> Green closing above the first body's midpoint
	if c1.IsBearish() && c3.IsBullish() && smallMiddle && c3.Close > firstMid {
		found = append(found, Pattern{Label: "Morning Star", Direction: Bullish, Strength: StrengthVeryHigh})
	}
	// Evening Star: Big Green -> Small Body -> Red closing below the first body's midpoint
	if c1.IsBullish() && c3.IsBearish() && smallMiddle && c3.Close < firstMid {
		found = append(found, Pattern{Label: "Evening Star", Direction: Bearish, Strength: StrengthVeryHigh})
	}
	return found
}

// detectThreeCandleRuns checks for Three White Soldiers / Three Black Crows
func detectThreeCandleRuns(candles []model.Candle) []Pattern {
	c1 := candles[len(candles)-3]
	c2 := candles[len(candles)-2]
	c3 := candles[len(candles)-1]

	var found []Pattern
	if c1.IsBullish() && c2.IsBullish() && c3.IsBullish() &&
		c2.Close > c1.Close && c3.Close > c2.Close {
		found = append(found, Pattern{Label: "Three White Soldiers", Direction: Bullish, Strength: StrengthVeryHigh})
	}
	if c1.IsBearish() && c2.IsBearish() && c3.IsBearish() &&
		c2.Close < c1.Close && c3.Close < c2.Close {
		found = append(found, Pattern{Label: "Three Black Crows", Direction: Bearish, Strength: StrengthVeryHigh})
	}
	return found
}
