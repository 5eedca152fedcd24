package structure

import (
	"math"

	"signalscope-go/internal/model"
)

const (
	trendlinePoints    = 3
	trendlineMaxSlope  = 100
	trendlineExtension = 10
	trendlineStep      = 5
)

// LinePoint is one renderable point of a line series
type LinePoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// Trendline is a least-squares line through the latest swing points
type Trendline struct {
	Points    []LinePoint `json:"points"`
	Slope     float64     `json:"slope"`
	Intercept float64     `json:"intercept"`
	Draw      bool        `json:"draw"`
}

// CalculateTrendline fits a line over the last three swing points (index, price)
// and samples it every 5 bars from 10 bars before the first point to 10 bars
// after the last, clipped to the candle window. Returns nil for fewer than two
// points or a slope steeper than 100 per bar.
func CalculateTrendline(points []SwingPoint, candles []model.Candle) *Trendline {
	if len(points) < 2 || len(candles) == 0 {
		return nil
	}
	if len(points) > trendlinePoints {
		points = points[len(points)-trendlinePoints:]
	}

	slope, intercept, ok := leastSquares(points)
	if !ok || math.Abs(slope) > trendlineMaxSlope {
		return nil
	}

	start := max(0, points[0].Index-trendlineExtension)
	end := min(len(candles)-1, points[len(points)-1].Index+trendlineExtension)

	line := &Trendline{Slope: slope, Intercept: intercept, Points: []LinePoint{}}
	for i := start; i <= end; i += trendlineStep {
		line.Points = append(line.Points, LinePoint{
			Time:  candles[i].Time,
			Value: slope*float64(i) + intercept,
		})
	}
	line.Draw = len(line.Points) > 1

	return line
}

func leastSquares(points []SwingPoint) (slope, intercept float64, ok bool) {
	n := float64(len(points))
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		x := float64(p.Index)
		sumX += x
		sumY += p.Price
		sumXY += x * p.Price
		sumXX += x * x
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0, 0, false
	}

	slope = (n*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}
