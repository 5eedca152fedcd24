package monitor

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"signalscope-go/internal/model"
	"signalscope-go/internal/predictor"
)

// FormatShift renders a market shift alert for chat delivery
func FormatShift(symbol string, tf model.Timeframe, shift Shift, next *predictor.Prediction) string {
	var b strings.Builder

	b.WriteString("🚨 MARKET SHIFT DETECTED\n")
	b.WriteString("Symbol: " + symbol + " (" + tf.String() + ")\n")
	b.WriteString("Trend: " + strings.ToUpper(string(next.Trend)) + "\n")
	b.WriteString(fmt.Sprintf("Confidence: %.1f%%\n", next.Confidence))
	b.WriteString("Price: " + FormatPrice(next.Price) + "\n")
	b.WriteString("Target: " + FormatPrice(next.TargetPrice) + "\n")
	for _, reason := range shift.Reasons {
		b.WriteString("• " + reason + "\n")
	}

	for _, pos := range next.Positions {
		b.WriteString(fmt.Sprintf("%s entry %s / stop %s / R:R %.2f\n",
			strings.ToUpper(string(pos.Side)),
			FormatPrice(pos.Entry),
			FormatPrice(pos.StopLoss),
			pos.RiskRewardRatio,
		))
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatPrice picks a precision that keeps small prices readable
func FormatPrice(price float64) string {
	places := 2
	switch {
	case price < 0.001:
		places = 8
	case price < 1:
		places = 6
	case price < 10:
		places = 4
	}
	return decimal.NewFromFloat(price).StringFixed(int32(places))
}
