package session

import (
	"cmp"
	"slices"
	"sync"

	"signalscope-go/internal/model"
)

// DefaultCapacity bounds the rolling candle history
const DefaultCapacity = 500

// CandleBuffer is the rolling candle history of one session. It is the only
// shared mutable state; analysis always works on a Snapshot.
type CandleBuffer struct {
	mu       sync.RWMutex
	candles  []model.Candle
	capacity int
}

func NewCandleBuffer(capacity int) *CandleBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &CandleBuffer{capacity: capacity}
}

// Load replaces the history with a historical batch, ordered by time.
// Duplicate times keep the later entry.
func (b *CandleBuffer) Load(candles []model.Candle) {
	sorted := slices.Clone(candles)
	slices.SortStableFunc(sorted, func(a, c model.Candle) int { return cmp.Compare(a.Time, c.Time) })

	deduped := make([]model.Candle, 0, len(sorted))
	for _, c := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].Time == c.Time {
			deduped[n-1] = c
			continue
		}
		deduped = append(deduped, c)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.candles = model.Tail(deduped, b.capacity)
}

// Upsert applies a streaming update: same time replaces the last bar, a newer
// time appends, an older time is dropped. Reports whether the buffer changed.
func (b *CandleBuffer) Upsert(c model.Candle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.candles)
	switch {
	case n > 0 && c.Time == b.candles[n-1].Time:
		b.candles[n-1] = c
	case n == 0 || c.Time > b.candles[n-1].Time:
		b.candles = append(b.candles, c)
		if len(b.candles) > b.capacity {
			b.candles = slices.Clone(b.candles[len(b.candles)-b.capacity:])
		}
	default:
		return false
	}
	return true
}

// Snapshot returns a copy safe to hand to the analyzer
func (b *CandleBuffer) Snapshot() []model.Candle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.candles)
}

func (b *CandleBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.candles)
}

// Last returns the most recent candle
func (b *CandleBuffer) Last() (model.Candle, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.candles) == 0 {
		return model.Candle{}, false
	}
	return b.candles[len(b.candles)-1], true
}
