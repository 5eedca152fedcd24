package monitor

import (
	"fmt"
	"math"
	"strings"

	"signalscope-go/internal/predictor"
)

const (
	defaultConfidenceDelta = 15.0
	defaultTargetShift     = 0.02
)

// Shift describes how far a new prediction drifted from the previous one
type Shift struct {
	Significant bool     `json:"significant"`
	Reasons     []string `json:"reasons"`
}

// String joins every drift reason for logging
func (s Shift) String() string {
	return strings.Join(s.Reasons, ", ")
}

// ChangeDetector flags significant drift between successive predictions
type ChangeDetector struct {
	confidenceDelta float64
	targetShift     float64
}

func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{
		confidenceDelta: defaultConfidenceDelta,
		targetShift:     defaultTargetShift,
	}
}

// Detect compares two snapshots. A trend flip, a confidence move above 15 points
// or a target move above 2% is significant. A missing previous snapshot never is.
func (d *ChangeDetector) Detect(prev, next *predictor.Prediction) Shift {
	shift := Shift{Reasons: []string{}}
	if prev == nil || next == nil {
		return shift
	}

	if prev.Trend != next.Trend {
		shift.Reasons = append(shift.Reasons, fmt.Sprintf("Trend changed from %s to %s", prev.Trend, next.Trend))
	}

	confidenceDelta := next.Confidence - prev.Confidence
	if math.Abs(confidenceDelta) > d.confidenceDelta {
		direction := "decreased"
		if confidenceDelta > 0 {
			direction = "increased"
		}
		shift.Reasons = append(shift.Reasons, fmt.Sprintf("Confidence %s by %.1f%%", direction, math.Abs(confidenceDelta)))
	}

	if prev.TargetPrice != 0 {
		priceDelta := math.Abs(next.TargetPrice-prev.TargetPrice) / prev.TargetPrice
		if priceDelta > d.targetShift {
			shift.Reasons = append(shift.Reasons, fmt.Sprintf("Target price shifted by %.2f%%", priceDelta*100))
		}
	}

	shift.Significant = len(shift.Reasons) > 0
	return shift
}
