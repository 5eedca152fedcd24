package model

// MarketStats is the rolling 24h ticker summary for one symbol
type MarketStats struct {
	Symbol             string  `json:"symbol"`
	LastPrice          float64 `json:"last_price"`
	PriceChange        float64 `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`
	High               float64 `json:"high"`
	Low                float64 `json:"low"`
	Volume             float64 `json:"volume"`
	QuoteVolume        float64 `json:"quote_volume"`
	OpenTime           int64   `json:"open_time"`
	CloseTime          int64   `json:"close_time"`
}
