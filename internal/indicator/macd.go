package indicator

const (
	SignalBullish = "bullish"
	SignalBearish = "bearish"
)

// MACD is a single-value MACD: the latest EMA12 minus the latest EMA26.
// There is no signal-line EMA; Signal only reports the sign of Value.
type MACD struct {
	Value  float64 `json:"value"`
	Signal string  `json:"signal"`
}

// CalculateMACD calculates the single-value MACD
func CalculateMACD(closes []float64) MACD {
	if len(closes) == 0 {
		return MACD{Signal: SignalBearish}
	}

	value := GetLastEMA(closes, 12) - GetLastEMA(closes, 26)

	signal := SignalBearish
	if value > 0 {
		signal = SignalBullish
	}

	return MACD{Value: value, Signal: signal}
}
