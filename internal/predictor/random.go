package predictor

import "math/rand"

// RandomSource supplies uniform values in [0, 1) for the projection noise term
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns the production source backed by the runtime's seeded generator
func NewRandomSource() RandomSource {
	return runtimeSource{}
}

type runtimeSource struct{}

func (runtimeSource) Float64() float64 { return rand.Float64() }

// FixedSource always returns the same value. Useful for reproducible projections.
type FixedSource float64

func (f FixedSource) Float64() float64 { return float64(f) }

// SequenceSource replays values in order, wrapping around at the end
type SequenceSource struct {
	Values []float64
	next   int
}

func (s *SequenceSource) Float64() float64 {
	if len(s.Values) == 0 {
		return 0.5
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}
