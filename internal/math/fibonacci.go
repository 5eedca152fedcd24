package math

// FibonacciLevels represents Fibonacci retracement levels measured up from the window low
type FibonacciLevels struct {
	Level0   float64 `json:"level_0"`    // 0% (window low)
	Level236 float64 `json:"level_23_6"` // 23.6%
	Level382 float64 `json:"level_38_2"` // 38.2%
	Level500 float64 `json:"level_50"`   // 50%
	Level618 float64 `json:"level_61_8"` // 61.8%
	Level786 float64 `json:"level_78_6"` // 78.6%
	Level100 float64 `json:"level_100"`  // 100% (window high)
	Range    float64 `json:"range"`
}

// CalculateRetracementLevels calculates retracement prices between low and high
func CalculateRetracementLevels(high, low float64) FibonacciLevels {
	diff := high - low

	return FibonacciLevels{
		Level0:   low,
		Level236: low + diff*0.236,
		Level382: low + diff*0.382,
		Level500: low + diff*0.5,
		Level618: low + diff*0.618,
		Level786: low + diff*0.786,
		Level100: low + diff,
		Range:    diff,
	}
}

// KeyLevel is a named retracement price
type KeyLevel struct {
	Label string
	Price float64
}

// KeyLevels returns the decision levels in the order they are checked: 61.8, 50, 38.2
func (f FibonacciLevels) KeyLevels() []KeyLevel {
	return []KeyLevel{
		{Label: "61.8%", Price: f.Level618},
		{Label: "50%", Price: f.Level500},
		{Label: "38.2%", Price: f.Level382},
	}
}

// FindKeyLevelNear returns the first key level within tolerance (relative to price)
func FindKeyLevelNear(price float64, levels FibonacciLevels, tolerance float64) (KeyLevel, bool) {
	for _, level := range levels.KeyLevels() {
		if CalculateRelativeDistance(price, level.Price, price) < tolerance {
			return level, true
		}
	}
	return KeyLevel{}, false
}
