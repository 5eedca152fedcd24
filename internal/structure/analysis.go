package structure

import (
	internalmath "signalscope-go/internal/math"
	"signalscope-go/internal/model"
)

// Analysis bundles every market structure output for one analysis call
type Analysis struct {
	MarketStructure MarketStructure               `json:"market_structure"`
	Fibonacci       *internalmath.FibonacciLevels `json:"fibonacci,omitempty"`
	VolumeProfile   *VolumeProfile                `json:"volume_profile,omitempty"`
	SmartMoney      *SmartMoney                   `json:"smart_money,omitempty"`
}

// Analyze runs swing classification, Fibonacci, volume profile and smart money detection
func Analyze(candles []model.Candle) Analysis {
	return Analysis{
		MarketStructure: AnalyzeMarketStructure(candles),
		Fibonacci:       CalculateFibonacci(candles),
		VolumeProfile:   CalculateVolumeProfile(candles),
		SmartMoney:      FindSmartMoney(candles),
	}
}

// CalculateFibonacci returns retracement levels over the trailing 100 candles' range,
// or nil with fewer than 50 candles
func CalculateFibonacci(candles []model.Candle) *internalmath.FibonacciLevels {
	if len(candles) < minCandles {
		return nil
	}

	high, low := model.HighLow(model.Tail(candles, lookback))
	levels := internalmath.CalculateRetracementLevels(high, low)
	return &levels
}
