package predictor

import (
	"math"

	"signalscope-go/internal/indicator"
	internalmath "signalscope-go/internal/math"
	"signalscope-go/internal/pattern"
	"signalscope-go/internal/structure"
)

// Trend is the predicted direction
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

const (
	trendThreshold = 2
	minConfidence  = 30.0
	maxConfidence  = 95.0
)

// Score is the raw multi-factor tally behind a prediction
type Score struct {
	Trend    int `json:"trend_score"`
	Strength int `json:"trend_strength"`
}

// ScoreTrend accumulates the signed trend score and the non-negative strength
func ScoreTrend(ind indicator.Set, patterns pattern.Report, ms structure.MarketStructure) Score {
	var s Score

	// EMA ordering
	if ind.Price > ind.EMA9 {
		s.Trend++
	}
	if ind.Price > ind.EMA21 {
		s.Trend += 2
	}
	if ind.Price > ind.EMA50 {
		s.Trend += 2
	}
	if ind.Price > ind.EMA100 {
		s.Trend++
	}
	if ind.EMA9 > ind.EMA21 {
		s.Trend += 2
	}
	if ind.EMA21 > ind.EMA50 {
		s.Trend += 2
	}

	switch {
	case ind.RSI < 30:
		s.Trend += 3
		s.Strength += 2
	case ind.RSI < 40:
		s.Trend++
		s.Strength++
	case ind.RSI > 70:
		s.Trend -= 3
		s.Strength += 2
	case ind.RSI > 60:
		s.Trend--
		s.Strength++
	}

	if ind.MACD.Signal == indicator.SignalBullish {
		s.Trend += 2
	} else {
		s.Trend -= 2
	}
	s.Strength++

	if ind.StochRSI.K < 20 {
		s.Trend += 2
	}
	if ind.StochRSI.K > 80 {
		s.Trend -= 2
	}

	if ind.VolumeRatio > 1.5 {
		s.Strength += 2
	} else if ind.VolumeRatio < 0.7 {
		s.Strength--
	}

	bbPosition := ind.Bands.Position(ind.Price)
	if bbPosition < 0.2 {
		s.Trend += 2
	}
	if bbPosition > 0.8 {
		s.Trend -= 2
	}

	if patterns.BullishCount > 0 {
		s.Trend += patterns.BullishCount * 2
		s.Strength++
	}
	if patterns.BearishCount > 0 {
		s.Trend -= patterns.BearishCount * 2
		s.Strength++
	}

	switch ms.Trend {
	case structure.TrendUp:
		s.Trend += 3
	case structure.TrendDown:
		s.Trend -= 3
	}

	// exactly zero momentum carries no vote
	s.Trend += internalmath.Sign(ind.Momentum)
	s.Trend += internalmath.Sign(ind.ROC)

	s.Strength = max(s.Strength, 0)
	return s
}

// ClassifyTrend maps a score above 2 to bullish and below -2 to bearish
func ClassifyTrend(score int) Trend {
	switch {
	case score > trendThreshold:
		return TrendBullish
	case score < -trendThreshold:
		return TrendBearish
	}
	return TrendNeutral
}

// Confidence turns a score into a percentage clamped to [30, 95]
func Confidence(s Score, anyPattern bool) float64 {
	confidence := 50.0
	confidence += math.Min(math.Abs(float64(s.Trend))*3, 30)
	confidence += math.Min(float64(s.Strength)*2, 15)
	if anyPattern {
		confidence += 5
	}
	return internalmath.Clamp(confidence, minConfidence, maxConfidence)
}
