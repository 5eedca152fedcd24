package monitor

import (
	"fmt"
	"strings"
	"testing"

	"signalscope-go/internal/model"
	"signalscope-go/internal/predictor"
)

func snapshot(trend predictor.Trend, confidence, target float64) *predictor.Prediction {
	return &predictor.Prediction{Trend: trend, Confidence: confidence, TargetPrice: target, Price: target}
}

func TestDetectChange(t *testing.T) {
	d := NewChangeDetector()

	tests := []struct {
		name        string
		prev, next  *predictor.Prediction
		significant bool
		reason      string
	}{
		{
			name:   "identical",
			prev:   snapshot(predictor.TrendBullish, 70, 100),
			next:   snapshot(predictor.TrendBullish, 70, 100),
			reason: "",
		},
		{
			name:   "no previous",
			prev:   nil,
			next:   snapshot(predictor.TrendBearish, 70, 100),
			reason: "",
		},
		{
			name:        "trend flip",
			prev:        snapshot(predictor.TrendBullish, 70, 100),
			next:        snapshot(predictor.TrendNeutral, 70, 100),
			significant: true,
			reason:      "Trend changed from bullish to neutral",
		},
		{
			name:   "confidence at threshold",
			prev:   snapshot(predictor.TrendBullish, 60, 100),
			next:   snapshot(predictor.TrendBullish, 75, 100),
			reason: "",
		},
		{
			name:        "confidence drop",
			prev:        snapshot(predictor.TrendBullish, 80, 100),
			next:        snapshot(predictor.TrendBullish, 62, 100),
			significant: true,
			reason:      "Confidence decreased by 18.0%",
		},
		{
			name:   "target within 2%",
			prev:   snapshot(predictor.TrendBullish, 70, 100),
			next:   snapshot(predictor.TrendBullish, 70, 101.9),
			reason: "",
		},
		{
			name:        "everything moved",
			prev:        snapshot(predictor.TrendBearish, 50, 200),
			next:        snapshot(predictor.TrendBullish, 90, 210),
			significant: true,
			reason:      "Trend changed from bearish to bullish, Confidence increased by 40.0%, Target price shifted by 5.00%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift := d.Detect(tt.prev, tt.next)
			if shift.Significant != tt.significant {
				t.Errorf("significant = %v, want %v", shift.Significant, tt.significant)
			}
			if got := shift.String(); got != tt.reason {
				t.Errorf("reason = %q, want %q", got, tt.reason)
			}
			if got := fmt.Sprint(shift); got != tt.reason {
				t.Errorf("formatted shift = %q, want %q", got, tt.reason)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{0.00012345, "0.00012345"},
		{0.5, "0.500000"},
		{3.14159, "3.1416"},
		{43250.5, "43250.50"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.price); got != tt.want {
			t.Errorf("FormatPrice(%v) = %s, want %s", tt.price, got, tt.want)
		}
	}
}

func TestFormatShift(t *testing.T) {
	next := snapshot(predictor.TrendBullish, 81.5, 105)
	next.Price = 100
	next.Positions = []predictor.Position{{Side: predictor.SideLong, Entry: 99.8, StopLoss: 98, RiskRewardRatio: 2.5}}
	shift := Shift{Significant: true, Reasons: []string{"Trend changed from neutral to bullish"}}

	msg := FormatShift("BTCUSDT", model.Timeframe5m, shift, next)
	for _, want := range []string{
		"MARKET SHIFT DETECTED",
		"Symbol: BTCUSDT (5m)",
		"Trend: BULLISH",
		"Confidence: 81.5%",
		"Target: 105.00",
		"• Trend changed from neutral to bullish",
		"LONG entry 99.80 / stop 98.00 / R:R 2.50",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}
