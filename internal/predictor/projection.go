package predictor

import (
	"math"

	"signalscope-go/internal/indicator"
	internalmath "signalscope-go/internal/math"
	"signalscope-go/internal/model"
)

const (
	trendDrift    = 0.003
	trendDecay    = 0.9
	reversionPull = 0.5
	levelZone     = 0.01
	levelAttract  = 0.3
	maxDeviation  = 0.05
)

// PricePoint is one projected bar
type PricePoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// Project walks price forward one bar at a time. Each step adds uniform noise in
// [-ATR, +ATR), a decaying trend drift, a growing pull toward EMA21 and an
// attraction to support/resistance when within 1% of it. Every step is clamped
// to ±5% of the starting price.
func Project(ind indicator.Set, trend Trend, lastTime int64, tf model.Timeframe, rng RandomSource) []PricePoint {
	steps := tf.ProjectionSteps()
	start := ind.Price
	points := make([]PricePoint, 0, steps)

	drift := 0.0
	switch trend {
	case TrendBullish:
		drift = trendDrift
	case TrendBearish:
		drift = -trendDrift
	}

	reversion := 0.0
	if start != 0 {
		reversion = -(start - ind.EMA21) / start * reversionPull
	}

	lo := start * (1 - maxDeviation)
	hi := start * (1 + maxDeviation)

	price := start
	for i := 1; i <= steps; i++ {
		decay := math.Pow(trendDecay, float64(i))

		noise := (rng.Float64() - 0.5) * ind.ATR * 2
		trendMove := price * drift * decay
		reversionMove := price * reversion * (1 - decay)
		levelMove := levelAttraction(price, ind.Support, ind.Resistance)

		price = internalmath.Clamp(price+noise+trendMove+reversionMove+levelMove, lo, hi)

		points = append(points, PricePoint{
			Time:  lastTime + tf.Seconds()*int64(i),
			Value: price,
		})
	}

	return points
}

// levelAttraction pulls 30% of the distance toward a level the price sits within 1% of.
// Support wins when both qualify.
func levelAttraction(price, support, resistance float64) float64 {
	if price < support*(1+levelZone) && price > support*(1-levelZone) {
		return (support - price) * levelAttract
	}
	if price > resistance*(1-levelZone) && price < resistance*(1+levelZone) {
		return (resistance - price) * levelAttract
	}
	return 0
}
