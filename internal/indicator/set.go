package indicator

import (
	internalmath "signalscope-go/internal/math"
	"signalscope-go/internal/model"
)

// Set is the full indicator snapshot for one analysis call
type Set struct {
	Price float64 `json:"price"`

	EMA9   float64 `json:"ema9"`
	EMA21  float64 `json:"ema21"`
	EMA50  float64 `json:"ema50"`
	EMA100 float64 `json:"ema100"`
	EMA200 float64 `json:"ema200"`

	SMA20  float64 `json:"sma20"`
	SMA50  float64 `json:"sma50"`
	SMA200 float64 `json:"sma200"`

	RSI      float64  `json:"rsi"`
	RSI7     float64  `json:"rsi7"`
	MACD     MACD     `json:"macd"`
	StochRSI StochRSI `json:"stoch_rsi"`
	ATR      float64  `json:"atr"`
	Bands    Bands    `json:"bollinger"`

	VolumeRatio  float64 `json:"volume_ratio"`
	Volatility   float64 `json:"volatility"`
	Volatility50 float64 `json:"volatility50"`
	Momentum     float64 `json:"momentum"`
	ROC          float64 `json:"roc"`

	Levels
}

// Calculate computes every indicator over the candle sequence
func Calculate(candles []model.Candle) Set {
	if len(candles) == 0 {
		return Set{MACD: MACD{Signal: SignalBearish}, StochRSI: StochRSI{K: 50, D: 50}, RSI: 50, RSI7: 50}
	}

	closes := model.Closes(candles)
	volumes := model.Volumes(candles)
	rsiSeries := CalculateRSI(closes, 14)

	volumeMA := GetLastSMA(volumes, 20)
	if volumeMA == 0 {
		volumeMA = 1
	}

	return Set{
		Price: closes[len(closes)-1],

		EMA9:   GetLastEMA(closes, 9),
		EMA21:  GetLastEMA(closes, 21),
		EMA50:  GetLastEMA(closes, 50),
		EMA100: GetLastEMA(closes, 100),
		EMA200: GetLastEMA(closes, 200),

		SMA20:  GetLastSMA(closes, 20),
		SMA50:  GetLastSMA(closes, 50),
		SMA200: GetLastSMA(closes, 200),

		RSI:      last(rsiSeries, 50),
		RSI7:     GetLastRSI(closes, 7),
		MACD:     CalculateMACD(closes),
		StochRSI: CalculateStochRSI(rsiSeries, 14),
		ATR:      GetLastATR(candles, 14),
		Bands:    CalculateBollingerBands(closes, 20, 2),

		VolumeRatio:  volumes[len(volumes)-1] / volumeMA,
		Volatility:   internalmath.CalculateVolatility(closes, 20),
		Volatility50: internalmath.CalculateVolatility(closes, 50),
		Momentum:     internalmath.CalculateMomentum(closes, 10),
		ROC:          internalmath.CalculateROC(closes, 12),

		Levels: FindSupportResistance(candles),
	}
}
