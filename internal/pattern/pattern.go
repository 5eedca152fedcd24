package pattern

import "signalscope-go/internal/model"

// Direction is the bias a pattern implies
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
)

// Strength is a descriptive tier tied to a pattern's weight
type Strength string

const (
	StrengthHigh     Strength = "high"      // weight 2
	StrengthVeryHigh Strength = "very high" // weight 3
	StrengthExtreme  Strength = "extreme"   // weight 4
)

// Weight returns the counter contribution of a strength tier
func (s Strength) Weight() int {
	switch s {
	case StrengthVeryHigh:
		return 3
	case StrengthExtreme:
		return 4
	}
	return 2
}

// Pattern is one detected formation
type Pattern struct {
	Label     string    `json:"label"`
	Direction Direction `json:"direction"`
	Strength  Strength  `json:"strength"`
	Neckline  float64   `json:"neckline,omitempty"`
}

// Report aggregates weighted pattern counts
type Report struct {
	BullishCount int       `json:"bullish_count"`
	BearishCount int       `json:"bearish_count"`
	Patterns     []Pattern `json:"patterns"`
}

// Any reports whether at least one pattern was detected
func (r Report) Any() bool {
	return r.BullishCount+r.BearishCount > 0
}

func (r *Report) add(p Pattern) {
	if p.Direction == Bullish {
		r.BullishCount += p.Strength.Weight()
	} else {
		r.BearishCount += p.Strength.Weight()
	}
	r.Patterns = append(r.Patterns, p)
}

const (
	minCandles = 50
	lookback   = 50
)

// Detect runs every recognizer over the trailing 50 candles in a fixed order:
// hammer/star, engulfing, star triplets, soldiers/crows, head-and-shoulders,
// double top/bottom, flag
func Detect(candles []model.Candle) Report {
	report := Report{Patterns: []Pattern{}}
	if len(candles) < minCandles {
		return report
	}

	recent := model.Tail(candles, lookback)

	detectors := []func([]model.Candle) []Pattern{
		detectHammers,
		detectEngulfing,
		detectStars,
		detectThreeCandleRuns,
		detectHeadAndShoulders,
		detectDoubles,
		detectFlags,
	}

	for _, detect := range detectors {
		for _, p := range detect(recent) {
			report.add(p)
		}
	}

	return report
}
