package service

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"signalscope-go/internal/logger"
)

var ErrInvalidSymbol = errors.New("symbol must end with USDT")

// Watchlist is the set of symbols scanned by one-shot analysis runs
type Watchlist struct {
	mu      sync.RWMutex
	symbols []string
}

// NewWatchlist seeds the list, skipping entries that fail validation
func NewWatchlist(symbols []string) *Watchlist {
	w := &Watchlist{}
	for _, s := range symbols {
		if err := w.Add(s); err != nil {
			logger.Warn("⚠️ Skipping watchlist entry", zap.String("symbol", s), zap.Error(err))
		}
	}
	return w
}

func normalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if len(symbol) <= len("USDT") || !strings.HasSuffix(symbol, "USDT") {
		return "", ErrInvalidSymbol
	}
	return symbol, nil
}

// Add inserts a symbol; duplicates are ignored
func (w *Watchlist) Add(symbol string) error {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if slices.Contains(w.symbols, symbol) {
		return nil
	}
	w.symbols = append(w.symbols, symbol)
	logger.Debug("✅ Added to watchlist", zap.String("symbol", symbol))
	return nil
}

// Remove drops a symbol and reports whether it was present
func (w *Watchlist) Remove(symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	w.mu.Lock()
	defer w.mu.Unlock()
	i := slices.Index(w.symbols, symbol)
	if i < 0 {
		return false
	}
	w.symbols = slices.Delete(w.symbols, i, i+1)
	logger.Debug("🗑️ Removed from watchlist", zap.String("symbol", symbol))
	return true
}

// List returns the symbols in insertion order
func (w *Watchlist) List() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.symbols)
}
