package math

// RiskReward describes a trade plan in percentage terms relative to the entry
type RiskReward struct {
	ProfitPct float64
	RiskPct   float64
	Ratio     float64
}

// CalculateLongRiskReward evaluates a long plan. Ratio divides by 1 when the
// risk percentage is exactly zero.
func CalculateLongRiskReward(entry, stopLoss, target float64) RiskReward {
	return newRiskReward(
		CalculatePercentageChange(entry, target),
		-CalculatePercentageChange(entry, stopLoss),
	)
}

// CalculateShortRiskReward evaluates a short plan, mirroring CalculateLongRiskReward
func CalculateShortRiskReward(entry, stopLoss, target float64) RiskReward {
	return newRiskReward(
		-CalculatePercentageChange(entry, target),
		CalculatePercentageChange(entry, stopLoss),
	)
}

func newRiskReward(profitPct, riskPct float64) RiskReward {
	denominator := riskPct
	if denominator == 0 {
		denominator = 1
	}

	return RiskReward{
		ProfitPct: profitPct,
		RiskPct:   riskPct,
		Ratio:     profitPct / denominator,
	}
}
