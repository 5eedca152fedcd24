package predictor

import (
	"math"

	"signalscope-go/internal/indicator"
	internalmath "signalscope-go/internal/math"
)

// Side is the trade direction of a suggested position
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Position is a suggested trade plan
type Position struct {
	Side               Side    `json:"side"`
	Entry              float64 `json:"entry"`
	Target             float64 `json:"target"`
	StopLoss           float64 `json:"stop_loss"`
	PotentialProfitPct float64 `json:"potential_profit_pct"`
	RiskPct            float64 `json:"risk_pct"`
	RiskRewardRatio    float64 `json:"risk_reward_ratio"`
}

// BuildPositions suggests at most one position in the trend's direction, targeting
// the projected price. Neutral trends get none.
func BuildPositions(ind indicator.Set, trend Trend, target float64) []Position {
	price := ind.Price
	atr := ind.ATR

	switch trend {
	case TrendBullish:
		entry := price * 0.998
		if price-ind.Support < atr*2 {
			entry = ind.Support + atr*0.5
		}
		stop := math.Max(ind.Support*0.998, price-atr*2)
		rr := internalmath.CalculateLongRiskReward(entry, stop, target)
		return []Position{newPosition(SideLong, entry, target, stop, rr)}

	case TrendBearish:
		entry := price * 1.002
		if ind.Resistance-price < atr*2 {
			entry = ind.Resistance - atr*0.5
		}
		stop := math.Min(ind.Resistance*1.002, price+atr*2)
		rr := internalmath.CalculateShortRiskReward(entry, stop, target)
		return []Position{newPosition(SideShort, entry, target, stop, rr)}
	}

	return []Position{}
}

func newPosition(side Side, entry, target, stop float64, rr internalmath.RiskReward) Position {
	return Position{
		Side:               side,
		Entry:              entry,
		Target:             target,
		StopLoss:           stop,
		PotentialProfitPct: rr.ProfitPct,
		RiskPct:            rr.RiskPct,
		RiskRewardRatio:    rr.Ratio,
	}
}
