package structure

import (
	"signalscope-go/internal/model"
)

const (
	smcLookback      = 50
	smcKeep          = 3
	orderBlockMinFit = 0.7
)

// Zone bias labels
const (
	ZoneBullish = "bullish"
	ZoneBearish = "bearish"
)

// OrderBlock represents an institutional order block
type OrderBlock struct {
	Type     string  `json:"type"`
	Price    float64 `json:"price"` // low for bullish, high for bearish
	Strength float64 `json:"strength"`
	Time     int64   `json:"time"`
}

// FVG represents a Fair Value Gap
type FVG struct {
	Type   string  `json:"type"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Size   float64 `json:"size"`
	Time   int64   `json:"time"`
}

// SmartMoney groups the most recent order blocks and fair value gaps
type SmartMoney struct {
	OrderBlocks   []OrderBlock `json:"order_blocks"`
	FairValueGaps []FVG        `json:"fair_value_gaps"`
}

// CountOrderBlocks returns how many bullish and bearish order blocks were kept
func (s SmartMoney) CountOrderBlocks() (bullish, bearish int) {
	for _, ob := range s.OrderBlocks {
		if ob.Type == ZoneBullish {
			bullish++
		} else {
			bearish++
		}
	}
	return bullish, bearish
}

// FindSmartMoney runs both detectors over the trailing 50 candles
func FindSmartMoney(candles []model.Candle) *SmartMoney {
	if len(candles) < minCandles {
		return nil
	}

	recent := model.Tail(candles, smcLookback)
	return &SmartMoney{
		OrderBlocks:   lastN(FindOrderBlocks(recent), smcKeep),
		FairValueGaps: lastN(FindFVGs(recent), smcKeep),
	}
}

// FindOrderBlocks flags displacement bars: a body filling at least 70% of the
// range, in the opposite direction of the preceding bar. The last bar is skipped.
func FindOrderBlocks(candles []model.Candle) []OrderBlock {
	obs := []OrderBlock{}

	for i := 3; i < len(candles)-1; i++ {
		current := candles[i]
		prev := candles[i-1]

		candleRange := current.Range()
		if candleRange <= 0 || current.Body() < candleRange*orderBlockMinFit {
			continue
		}
		strength := current.Body() / candleRange

		if current.IsBullish() && prev.IsBearish() {
			obs = append(obs, OrderBlock{Type: ZoneBullish, Price: current.Low, Strength: strength, Time: current.Time})
		}
		if current.IsBearish() && prev.IsBullish() {
			obs = append(obs, OrderBlock{Type: ZoneBearish, Price: current.High, Strength: strength, Time: current.Time})
		}
	}
	return obs
}

// FindFVGs identifies three-bar gaps: bar 3's low above bar 1's high with a green
// middle bar (bullish), or bar 3's high below bar 1's low with a red middle bar (bearish)
func FindFVGs(candles []model.Candle) []FVG {
	fvgs := []FVG{}

	for i := 2; i < len(candles); i++ {
		first := candles[i-2]
		middle := candles[i-1]
		third := candles[i]

		if third.Low > first.High && middle.IsBullish() {
			fvgs = append(fvgs, FVG{
				Type:   ZoneBullish,
				Top:    third.Low,
				Bottom: first.High,
				Size:   third.Low - first.High,
				Time:   middle.Time,
			})
		}
		if third.High < first.Low && middle.IsBearish() {
			fvgs = append(fvgs, FVG{
				Type:   ZoneBearish,
				Top:    first.Low,
				Bottom: third.High,
				Size:   first.Low - third.High,
				Time:   middle.Time,
			})
		}
	}
	return fvgs
}

func lastN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[len(items)-n:]
	}
	return items
}
