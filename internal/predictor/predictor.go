package predictor

import (
	"fmt"
	"slices"

	"signalscope-go/internal/indicator"
	internalmath "signalscope-go/internal/math"
	"signalscope-go/internal/model"
	"signalscope-go/internal/pattern"
	"signalscope-go/internal/structure"
)

// MinCandles is the shortest history Analyze accepts
const MinCandles = 200

// Prediction is the full output of one analysis call
type Prediction struct {
	Timeframe       model.Timeframe               `json:"timeframe"`
	AsOf            int64                         `json:"as_of"`
	Price           float64                       `json:"price"`
	Trend           Trend                         `json:"trend"`
	Confidence      float64                       `json:"confidence"`
	Score           Score                         `json:"score"`
	FuturePrices    []PricePoint                  `json:"future_prices"`
	Positions       []Position                    `json:"positions"`
	Signals         []Signal                      `json:"signals"`
	TargetPrice     float64                       `json:"target_price"`
	Indicators      indicator.Set                 `json:"indicators"`
	Patterns        pattern.Report                `json:"patterns"`
	MarketStructure structure.MarketStructure     `json:"market_structure"`
	Fibonacci       *internalmath.FibonacciLevels `json:"fibonacci,omitempty"`
	VolumeProfile   *structure.VolumeProfile      `json:"volume_profile,omitempty"`
	SmartMoney      *structure.SmartMoney         `json:"smart_money,omitempty"`
	Trendline       *structure.Trendline          `json:"trendline,omitempty"`
}

// Predictor turns candle history into a scored prediction. It holds no state
// between calls besides its random source.
type Predictor struct {
	rng RandomSource
}

// New creates a predictor. A nil source falls back to the runtime generator.
func New(rng RandomSource) *Predictor {
	if rng == nil {
		rng = NewRandomSource()
	}
	return &Predictor{rng: rng}
}

// Analyze runs the full pipeline over a copy of candles
func (p *Predictor) Analyze(candles []model.Candle, tf model.Timeframe) (*Prediction, error) {
	if !tf.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrTimeframeNotSupported, tf)
	}
	if len(candles) < MinCandles {
		return nil, fmt.Errorf("%w: got %d candles, need %d", model.ErrInsufficientData, len(candles), MinCandles)
	}

	data := slices.Clone(candles)
	last := data[len(data)-1]

	// ========================================
	// STEP 1: INDICATORS, PATTERNS, STRUCTURE
	// ========================================
	ind := indicator.Calculate(data)
	patterns := pattern.Detect(data)
	analysis := structure.Analyze(data)

	// ========================================
	// STEP 2: SCORE
	// ========================================
	score := ScoreTrend(ind, patterns, analysis.MarketStructure)
	trend := ClassifyTrend(score.Trend)
	confidence := Confidence(score, patterns.Any())

	// ========================================
	// STEP 3: PROJECTION, POSITIONS, SIGNALS
	// ========================================
	future := Project(ind, trend, last.Time, tf, p.rng)
	target := ind.Price
	if len(future) > 0 {
		target = future[len(future)-1].Value
	}

	return &Prediction{
		Timeframe:       tf,
		AsOf:            last.Time,
		Price:           ind.Price,
		Trend:           trend,
		Confidence:      confidence,
		Score:           score,
		FuturePrices:    future,
		Positions:       BuildPositions(ind, trend, target),
		Signals:         BuildSignals(ind, trend, patterns, analysis),
		TargetPrice:     target,
		Indicators:      ind,
		Patterns:        patterns,
		MarketStructure: analysis.MarketStructure,
		Fibonacci:       analysis.Fibonacci,
		VolumeProfile:   analysis.VolumeProfile,
		SmartMoney:      analysis.SmartMoney,
		Trendline:       analysis.MarketStructure.Trendline,
	}, nil
}
