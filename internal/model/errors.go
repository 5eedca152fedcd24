package model

import "errors"

var (
	// ErrInsufficientData is returned when too few candles are supplied for analysis
	ErrInsufficientData = errors.New("insufficient data")
	// ErrTimeframeNotSupported is returned for timeframes outside the analyzable set
	ErrTimeframeNotSupported = errors.New("timeframe not supported")
)
