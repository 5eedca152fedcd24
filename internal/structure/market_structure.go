package structure

import (
	"signalscope-go/internal/indicator"
	"signalscope-go/internal/model"
)

// Trend is the swing-based market direction
type Trend string

const (
	TrendUp      Trend = "uptrend"
	TrendDown    Trend = "downtrend"
	TrendNeutral Trend = "neutral"
)

// Regime distinguishes trending from ranging markets
type Regime string

const (
	RegimeTrending Regime = "trending"
	RegimeRanging  Regime = "ranging"
)

const (
	minCandles  = 50
	lookback    = 100
	swingWindow = 2
	swingMargin = 5
)

// SwingPoint is a local extreme inside the analyzed window
type SwingPoint struct {
	Index int     `json:"index"`
	Price float64 `json:"price"`
	Time  int64   `json:"time"`
}

// MarketStructure contains market structure analysis results
type MarketStructure struct {
	Trend       Trend        `json:"trend"`
	StrengthPct float64      `json:"strength_pct"`
	Structure   Regime       `json:"structure"`
	SwingHighs  []SwingPoint `json:"swing_highs"`
	SwingLows   []SwingPoint `json:"swing_lows"`
	Trendline   *Trendline   `json:"trendline,omitempty"`
}

// AnalyzeMarketStructure classifies the trailing 100 candles by counting
// higher/lower highs and lows between consecutive swing points
func AnalyzeMarketStructure(candles []model.Candle) MarketStructure {
	result := MarketStructure{
		Trend:      TrendNeutral,
		Structure:  RegimeRanging,
		SwingHighs: []SwingPoint{},
		SwingLows:  []SwingPoint{},
	}
	if len(candles) < minCandles {
		return result
	}

	recent := model.Tail(candles, lookback)
	result.SwingHighs, result.SwingLows = findSwingPoints(recent)

	higherHighs, lowerHighs := countSteps(result.SwingHighs)
	higherLows, lowerLows := countSteps(result.SwingLows)
	total := len(result.SwingHighs) + len(result.SwingLows)

	switch {
	case higherHighs > lowerHighs && higherLows > lowerLows:
		result.Trend = TrendUp
		result.Structure = RegimeTrending
		result.StrengthPct = float64(higherHighs+higherLows) / float64(total) * 100
	case lowerHighs > higherHighs && lowerLows > higherLows:
		result.Trend = TrendDown
		result.Structure = RegimeTrending
		result.StrengthPct = float64(lowerHighs+lowerLows) / float64(total) * 100
	}

	switch result.Trend {
	case TrendUp:
		result.Trendline = CalculateTrendline(result.SwingLows, recent)
	case TrendDown:
		result.Trendline = CalculateTrendline(result.SwingHighs, recent)
	}

	return result
}

// findSwingPoints scans [5, len-5) for bars strictly beyond 2 neighbours on each side
func findSwingPoints(candles []model.Candle) (highs, lows []SwingPoint) {
	highs = []SwingPoint{}
	lows = []SwingPoint{}

	for i := swingMargin; i < len(candles)-swingMargin; i++ {
		if indicator.IsSwingHigh(candles, i, swingWindow) {
			highs = append(highs, SwingPoint{Index: i, Price: candles[i].High, Time: candles[i].Time})
		}
		if indicator.IsSwingLow(candles, i, swingWindow) {
			lows = append(lows, SwingPoint{Index: i, Price: candles[i].Low, Time: candles[i].Time})
		}
	}
	return highs, lows
}

// countSteps counts rises (strictly higher) and everything else between consecutive points
func countSteps(points []SwingPoint) (higher, lower int) {
	for i := 1; i < len(points); i++ {
		if points[i].Price > points[i-1].Price {
			higher++
		} else {
			lower++
		}
	}
	return higher, lower
}
