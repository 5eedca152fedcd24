package session

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"signalscope-go/internal/model"
	"signalscope-go/internal/monitor"
	"signalscope-go/internal/predictor"
)

// Result is the outcome of one analysis cycle
type Result struct {
	Prediction *predictor.Prediction `json:"prediction"`
	Shift      monitor.Shift         `json:"shift"`
}

// Session owns the state of one live symbol/timeframe: its candle buffer and
// the previous prediction kept for drift detection
type Session struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Timeframe model.Timeframe `json:"timeframe"`
	StartedAt time.Time       `json:"started_at"`

	candles   *CandleBuffer
	predictor *predictor.Predictor
	detector  *monitor.ChangeDetector

	runMu   sync.Mutex
	mu      sync.Mutex
	last    *predictor.Prediction
	lastRun time.Time
}

func New(symbol string, tf model.Timeframe, p *predictor.Predictor) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Symbol:    strings.ToUpper(symbol),
		Timeframe: tf,
		StartedAt: time.Now(),
		candles:   NewCandleBuffer(DefaultCapacity),
		predictor: p,
		detector:  monitor.NewChangeDetector(),
	}
}

// Candles exposes the rolling buffer for loaders and streams
func (s *Session) Candles() *CandleBuffer {
	return s.candles
}

// Run analyzes a snapshot of the buffer and compares it with the previous
// prediction. Calls are serialized per session.
func (s *Session) Run() (*Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	pred, err := s.predictor.Analyze(s.candles.Snapshot(), s.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("analyze %s %s: %w", s.Symbol, s.Timeframe, err)
	}

	prev := s.Record(pred)
	return &Result{Prediction: pred, Shift: s.detector.Detect(prev, pred)}, nil
}

// Record stores p as the latest prediction and returns the one it replaced
func (s *Session) Record(p *predictor.Prediction) *predictor.Prediction {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.last
	s.last = p
	s.lastRun = time.Now()
	return prev
}

// Latest returns the most recent prediction, nil before the first run
func (s *Session) Latest() *predictor.Prediction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// LastRun returns when the last successful analysis finished
func (s *Session) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// Registry indexes live sessions by symbol and timeframe
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	predictor *predictor.Predictor
}

func NewRegistry(p *predictor.Predictor) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		predictor: p,
	}
}

func key(symbol string, tf model.Timeframe) string {
	return strings.ToUpper(symbol) + "@" + tf.String()
}

// Get returns an existing session
func (r *Registry) Get(symbol string, tf model.Timeframe) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[key(symbol, tf)]
	return s, ok
}

// Open returns the session for symbol/timeframe, creating it on first use
func (r *Registry) Open(symbol string, tf model.Timeframe) *Session {
	k := key(symbol, tf)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[k]; ok {
		return s
	}
	s := New(symbol, tf, r.predictor)
	r.sessions[k] = s
	return s
}

// Close drops a session; in-flight runs finish on their own
func (r *Registry) Close(symbol string, tf model.Timeframe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key(symbol, tf))
}

// List returns every session ordered by symbol, then timeframe duration
func (r *Registry) List() []*Session {
	r.mu.RLock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].Timeframe.Seconds() < out[j].Timeframe.Seconds()
	})
	return out
}
