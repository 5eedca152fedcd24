package structure

import (
	"math"

	"signalscope-go/internal/model"
)

const (
	profileBins          = 20
	highVolumeMultiplier = 1.5
	lowVolumeMultiplier  = 0.5
)

// VolumeProfileLevel represents a price bucket with its volume
type VolumeProfileLevel struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// VolumeProfile holds the bucketed profile plus its high and low volume nodes
type VolumeProfile struct {
	Levels          []VolumeProfileLevel `json:"levels"`
	HighVolumeNodes []VolumeProfileLevel `json:"high_volume_nodes"`
	LowVolumeNodes  []VolumeProfileLevel `json:"low_volume_nodes"`
	POC             float64              `json:"poc"` // Point of Control (bucket with max volume)
	AverageVolume   float64              `json:"average_volume"`
}

// CalculateVolumeProfile buckets the trailing 100 closes into 20 equal-width
// price buckets spanning the window's low-high range. Missing volume counts as 1.
// The node thresholds compare against the mean of the non-empty buckets.
func CalculateVolumeProfile(candles []model.Candle) *VolumeProfile {
	if len(candles) < minCandles {
		return nil
	}

	recent := model.Tail(candles, lookback)
	maxPrice, minPrice := model.HighLow(recent)
	binSize := (maxPrice - minPrice) / profileBins

	bins := make([]float64, profileBins)
	filled := make([]bool, profileBins)
	for _, c := range recent {
		binIndex := 0
		if binSize > 0 {
			binIndex = int(math.Floor((c.Close - minPrice) / binSize))
		}
		binIndex = max(0, min(profileBins-1, binIndex))
		bins[binIndex] += c.EffectiveVolume()
		filled[binIndex] = true
	}

	profile := &VolumeProfile{
		Levels:          []VolumeProfileLevel{},
		HighVolumeNodes: []VolumeProfileLevel{},
		LowVolumeNodes:  []VolumeProfileLevel{},
	}

	total, count, maxVol := 0.0, 0, -1.0
	for i, vol := range bins {
		if !filled[i] {
			continue
		}
		level := VolumeProfileLevel{Price: minPrice + float64(i)*binSize, Volume: vol}
		profile.Levels = append(profile.Levels, level)
		total += vol
		count++

		if vol > maxVol {
			maxVol = vol
			profile.POC = level.Price
		}
	}
	profile.AverageVolume = total / float64(count)

	for _, level := range profile.Levels {
		switch {
		case level.Volume > profile.AverageVolume*highVolumeMultiplier:
			profile.HighVolumeNodes = append(profile.HighVolumeNodes, level)
		case level.Volume < profile.AverageVolume*lowVolumeMultiplier:
			profile.LowVolumeNodes = append(profile.LowVolumeNodes, level)
		}
	}

	return profile
}
