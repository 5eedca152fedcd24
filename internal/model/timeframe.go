package model

import (
	"fmt"
	"time"
)

// Timeframe is the duration each candle represents
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
)

// SupportedTimeframes lists every timeframe the analyzer accepts, shortest first
var SupportedTimeframes = []Timeframe{Timeframe1m, Timeframe5m, Timeframe15m, Timeframe30m}

// ParseTimeframe validates a raw interval string such as "5m"
func ParseTimeframe(raw string) (Timeframe, error) {
	tf := Timeframe(raw)
	if !tf.Valid() {
		return "", fmt.Errorf("%w: %q", ErrTimeframeNotSupported, raw)
	}
	return tf, nil
}

// Valid reports whether the timeframe is analyzable
func (tf Timeframe) Valid() bool {
	switch tf {
	case Timeframe1m, Timeframe5m, Timeframe15m, Timeframe30m:
		return true
	}
	return false
}

// Seconds returns the bar duration in seconds
func (tf Timeframe) Seconds() int64 {
	switch tf {
	case Timeframe5m:
		return 300
	case Timeframe15m:
		return 900
	case Timeframe30m:
		return 1800
	}
	return 60
}

// ProjectionSteps returns how many future bars the price path covers
func (tf Timeframe) ProjectionSteps() int {
	switch tf {
	case Timeframe5m:
		return 12
	case Timeframe15m:
		return 8
	case Timeframe30m:
		return 6
	}
	return 10
}

// RefreshInterval returns how often a live session re-runs the analysis
func (tf Timeframe) RefreshInterval() time.Duration {
	switch tf {
	case Timeframe5m:
		return 30 * time.Second
	case Timeframe15m:
		return 60 * time.Second
	case Timeframe30m:
		return 90 * time.Second
	}
	return 15 * time.Second
}

func (tf Timeframe) String() string { return string(tf) }
