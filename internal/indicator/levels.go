package indicator

import (
	"sort"

	"signalscope-go/internal/model"
)

const (
	levelLookback     = 100
	levelSwingWindow  = 2
	clusterThreshold  = 0.002
	maxReportedLevels = 3
)

// Levels holds the nearest support and resistance around the current price
// plus the lowest swing clusters on each side
type Levels struct {
	Support          float64   `json:"support"`
	Resistance       float64   `json:"resistance"`
	SupportLevels    []float64 `json:"support_levels"`
	ResistanceLevels []float64 `json:"resistance_levels"`
}

// FindSupportResistance scans the trailing 100 candles for swing lows/highs
// (strictly beyond 2 bars on each side), clusters them, and picks the nearest
// cluster below/above the last close. Without a qualifying cluster it falls back
// to the window's raw low/high. SupportLevels and ResistanceLevels report the
// lowest three clusters of each kind in ascending order, wherever price sits.
func FindSupportResistance(candles []model.Candle) Levels {
	if len(candles) == 0 {
		return Levels{}
	}

	recent := model.Tail(candles, levelLookback)
	price := recent[len(recent)-1].Close
	windowHigh, windowLow := model.HighLow(recent)

	var swingLows, swingHighs []float64
	for i := levelSwingWindow; i < len(recent)-levelSwingWindow; i++ {
		if IsSwingHigh(recent, i, levelSwingWindow) {
			swingHighs = append(swingHighs, recent[i].High)
		}
		if IsSwingLow(recent, i, levelSwingWindow) {
			swingLows = append(swingLows, recent[i].Low)
		}
	}

	lowClusters := ClusterLevels(swingLows, clusterThreshold)
	highClusters := ClusterLevels(swingHighs, clusterThreshold)
	supports := below(lowClusters, price)
	resistances := above(highClusters, price)

	levels := Levels{
		Support:          windowLow,
		Resistance:       windowHigh,
		SupportLevels:    firstN(lowClusters, maxReportedLevels),
		ResistanceLevels: firstN(highClusters, maxReportedLevels),
	}
	if len(supports) > 0 {
		levels.Support = supports[0]
	}
	if len(resistances) > 0 {
		levels.Resistance = resistances[0]
	}

	return levels
}

// ClusterLevels sorts levels ascending and merges every run whose relative
// distance from the run's first element is below threshold, emitting run averages
func ClusterLevels(levels []float64, threshold float64) []float64 {
	if len(levels) == 0 {
		return []float64{}
	}

	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)

	var clusters []float64
	cluster := []float64{sorted[0]}

	flush := func() {
		sum := 0.0
		for _, v := range cluster {
			sum += v
		}
		clusters = append(clusters, sum/float64(len(cluster)))
	}

	for _, level := range sorted[1:] {
		anchor := cluster[0]
		if anchor != 0 && (level-anchor)/anchor < threshold {
			cluster = append(cluster, level)
			continue
		}
		flush()
		cluster = []float64{level}
	}
	flush()

	return clusters
}

// IsSwingHigh reports whether candles[i].High is strictly above every high
// within `window` bars on each side. The caller keeps i-window..i+window in range.
func IsSwingHigh(candles []model.Candle, i, window int) bool {
	for j := i - window; j <= i+window; j++ {
		if j != i && candles[j].High >= candles[i].High {
			return false
		}
	}
	return true
}

// IsSwingLow reports whether candles[i].Low is strictly below every low
// within `window` bars on each side
func IsSwingLow(candles []model.Candle, i, window int) bool {
	for j := i - window; j <= i+window; j++ {
		if j != i && candles[j].Low <= candles[i].Low {
			return false
		}
	}
	return true
}

// below returns levels under price, nearest first
func below(sortedAsc []float64, price float64) []float64 {
	var out []float64
	for i := len(sortedAsc) - 1; i >= 0; i-- {
		if sortedAsc[i] < price {
			out = append(out, sortedAsc[i])
		}
	}
	return out
}

// above returns levels over price, nearest first
func above(sortedAsc []float64, price float64) []float64 {
	var out []float64
	for _, level := range sortedAsc {
		if level > price {
			out = append(out, level)
		}
	}
	return out
}

func firstN(values []float64, n int) []float64 {
	if len(values) > n {
		values = values[:n]
	}
	return append([]float64{}, values...)
}
