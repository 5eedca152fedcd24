package main

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"signalscope-go/internal/model"
	"signalscope-go/internal/predictor"
	"signalscope-go/internal/worker"
)

func TestReport(t *testing.T) {
	good := &predictor.Prediction{Timeframe: model.Timeframe5m, Trend: predictor.TrendBullish, Confidence: 72.5, Price: 101.25, TargetPrice: 103}
	unencodable := &predictor.Prediction{Timeframe: model.Timeframe5m, Trend: predictor.TrendBearish, Price: math.NaN()}

	tests := []struct {
		name       string
		results    []worker.Result
		asJSON     bool
		wantFailed int
		wantLines  []string
	}{
		{
			name:    "text",
			results: []worker.Result{
				{Symbol: "BTCUSDT", Prediction: good},
				{Symbol: "ETHUSDT", Err: errors.New("exchange down")},
			},
			wantFailed: 1,
			wantLines:  []string{
				"BTCUSDT    BULLISH   72.5%  price 101.25  target 103.00  signals 0",
				"ETHUSDT    ERROR exchange down",
			},
		},
		{
			name:    "json with an unencodable prediction",
			results: []worker.Result{
				{Symbol: "BTCUSDT", Prediction: good},
				{Symbol: "SOLUSDT", Prediction: unencodable},
			},
			asJSON:     true,
			wantFailed: 1,
			wantLines:  []string{
				`"trend": "bullish"`,
				"SOLUSDT    ERROR encode prediction: json: unsupported value: NaN",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if failed := report(&out, tt.results, tt.asJSON); failed != tt.wantFailed {
				t.Errorf("failed = %d, want %d", failed, tt.wantFailed)
			}
			for _, line := range tt.wantLines {
				if !strings.Contains(out.String(), line) {
					t.Errorf("output missing %q:\n%s", line, out.String())
				}
			}
		})
	}
}
