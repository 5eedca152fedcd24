package predictor

import (
	"fmt"
	"math"

	"signalscope-go/internal/indicator"
	internalmath "signalscope-go/internal/math"
	"signalscope-go/internal/pattern"
	"signalscope-go/internal/structure"
)

// SignalStrength grades a signal for display
type SignalStrength string

const (
	SignalStrong SignalStrength = "Strong"
	SignalMedium SignalStrength = "Medium"
	SignalInfo   SignalStrength = "Info"
)

const fibonacciTolerance = 0.005

// Signal is a human-readable triggered condition
type Signal struct {
	Type     Trend          `json:"type"`
	Message  string         `json:"message"`
	Strength SignalStrength `json:"strength"`
}

type signalList []Signal

func (l *signalList) add(t Trend, strength SignalStrength, format string, args ...any) {
	*l = append(*l, Signal{Type: t, Message: fmt.Sprintf(format, args...), Strength: strength})
}

// BuildSignals emits one record per triggered threshold. Signals are additive and
// never deduplicated.
func BuildSignals(ind indicator.Set, trend Trend, patterns pattern.Report, analysis structure.Analysis) []Signal {
	signals := signalList{}
	price := ind.Price

	switch {
	case ind.RSI < 30:
		signals.add(TrendBullish, SignalStrong, "RSI Oversold (%.1f) - Strong reversal potential", ind.RSI)
	case ind.RSI < 40:
		signals.add(TrendBullish, SignalMedium, "RSI below 40 (%.1f) - Bullish territory", ind.RSI)
	case ind.RSI > 70:
		signals.add(TrendBearish, SignalStrong, "RSI Overbought (%.1f) - Reversal risk high", ind.RSI)
	case ind.RSI > 60:
		signals.add(TrendBearish, SignalMedium, "RSI above 60 (%.1f) - Bearish territory", ind.RSI)
	}

	if ind.EMA9 > ind.EMA21 && ind.EMA21 > ind.EMA50 {
		signals.add(TrendBullish, SignalStrong, "Perfect EMA alignment - Strong uptrend structure")
	} else if ind.EMA9 < ind.EMA21 && ind.EMA21 < ind.EMA50 {
		signals.add(TrendBearish, SignalStrong, "Perfect EMA alignment - Strong downtrend structure")
	}

	if ind.EMA21 != 0 {
		distance := internalmath.CalculatePercentageChange(ind.EMA21, price)
		if math.Abs(distance) > 2 {
			side := "below"
			if distance > 0 {
				side = "above"
			}
			signals.add(TrendNeutral, SignalMedium, "Price %s EMA21 by %.2f%% - Mean reversion likely", side, math.Abs(distance))
		}
	}

	if ind.MACD.Signal == indicator.SignalBullish && ind.MACD.Value > 0 {
		signals.add(TrendBullish, SignalStrong, "MACD bullish with positive momentum - Trend acceleration")
	} else if ind.MACD.Signal == indicator.SignalBearish && ind.MACD.Value < 0 {
		signals.add(TrendBearish, SignalStrong, "MACD bearish with negative momentum - Downward pressure")
	}

	if ind.StochRSI.K < 20 && ind.StochRSI.K > ind.StochRSI.D {
		signals.add(TrendBullish, SignalStrong, "Stochastic RSI oversold with bullish cross - Entry opportunity")
	} else if ind.StochRSI.K > 80 && ind.StochRSI.K < ind.StochRSI.D {
		signals.add(TrendBearish, SignalStrong, "Stochastic RSI overbought with bearish cross - Exit signal")
	}

	bbPosition := ind.Bands.Position(price)
	if bbPosition < 0.1 {
		signals.add(TrendBullish, SignalMedium, "Price near lower Bollinger Band - Oversold bounce likely")
	} else if bbPosition > 0.9 {
		signals.add(TrendBearish, SignalMedium, "Price near upper Bollinger Band - Overbought pullback likely")
	}

	volumeSide := TrendBearish
	if trend == TrendBullish {
		volumeSide = TrendBullish
	}
	switch {
	case ind.VolumeRatio > 2:
		signals.add(volumeSide, SignalStrong, "Exceptional volume (%.1fx avg) - Strong trend confirmation", ind.VolumeRatio)
	case ind.VolumeRatio > 1.5:
		signals.add(volumeSide, SignalMedium, "High volume (%.1fx avg) - Trend confirmation", ind.VolumeRatio)
	case ind.VolumeRatio < 0.5:
		signals.add(TrendNeutral, SignalInfo, "Low volume - Weak trend, be cautious")
	}

	if price != 0 {
		if (price-ind.Support)/price*100 < 1 {
			signals.add(TrendBullish, SignalStrong, "Near support at $%.2f - Bounce opportunity", ind.Support)
		}
		if (ind.Resistance-price)/price*100 < 1 {
			signals.add(TrendBearish, SignalStrong, "Near resistance at $%.2f - Rejection risk", ind.Resistance)
		}
	}

	if patterns.BullishCount > 0 {
		signals.add(TrendBullish, SignalStrong, "%d bullish %s detected", patterns.BullishCount, plural(patterns.BullishCount))
	}
	if patterns.BearishCount > 0 {
		signals.add(TrendBearish, SignalStrong, "%d bearish %s detected", patterns.BearishCount, plural(patterns.BearishCount))
	}

	switch analysis.MarketStructure.Trend {
	case structure.TrendUp:
		signals.add(TrendBullish, SignalMedium, "Market structure: Higher highs and higher lows confirmed")
	case structure.TrendDown:
		signals.add(TrendBearish, SignalMedium, "Market structure: Lower highs and lower lows confirmed")
	}

	if ind.Volatility > 3 {
		signals.add(TrendNeutral, SignalInfo, "Extreme volatility (%.1f%%) - High risk environment", ind.Volatility)
	}

	if sm := analysis.SmartMoney; sm != nil {
		bullish, bearish := sm.CountOrderBlocks()
		if bullish > 0 {
			signals.add(TrendBullish, SignalStrong, "%d Bullish Order Block(s) detected - Institutional support", bullish)
		}
		if bearish > 0 {
			signals.add(TrendBearish, SignalStrong, "%d Bearish Order Block(s) detected - Institutional resistance", bearish)
		}
	}

	if fib := analysis.Fibonacci; fib != nil {
		if level, ok := internalmath.FindKeyLevelNear(price, *fib, fibonacciTolerance); ok {
			signals.add(TrendNeutral, SignalStrong, "Price near Fibonacci %s level ($%.2f) - Key decision point", level.Label, level.Price)
		}
	}

	return signals
}

func plural(count int) string {
	if count > 1 {
		return "patterns"
	}
	return "pattern"
}
