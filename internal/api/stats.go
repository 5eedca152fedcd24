package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"signalscope-go/internal/logger"
	"signalscope-go/internal/model"
)

// 24h ticker refresh interval
const statsTTL = 30 * time.Second

// StatsFetcher supplies the rolling 24h ticker
type StatsFetcher interface {
	Get24hStats(ctx context.Context, symbol string) (*model.MarketStats, error)
}

// statsCache serves one symbol's ticker, refetching at most once per ttl
type statsCache struct {
	fetcher StatsFetcher
	ttl     time.Duration
	now     func() time.Time

	mu        sync.Mutex
	value     *model.MarketStats
	fetchedAt time.Time
}

func newStatsCache(fetcher StatsFetcher, ttl time.Duration) *statsCache {
	return &statsCache{fetcher: fetcher, ttl: ttl, now: time.Now}
}

// get returns the cached ticker while it is fresh. When a refresh fails the
// last good ticker is served with its original fetch time.
func (c *statsCache) get(ctx context.Context, symbol string) (*model.MarketStats, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.value, c.fetchedAt, nil
	}

	stats, err := c.fetcher.Get24hStats(ctx, symbol)
	if err != nil {
		if c.value != nil {
			logger.Warn("⚠️  [API] 24h stats refresh failed, serving previous ticker",
				zap.String("symbol", symbol),
				zap.Time("fetched_at", c.fetchedAt),
				zap.Error(err),
			)
			return c.value, c.fetchedAt, nil
		}
		return nil, time.Time{}, err
	}
	c.value = stats
	c.fetchedAt = c.now()
	return c.value, c.fetchedAt, nil
}
