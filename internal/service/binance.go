package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"signalscope-go/internal/logger"
	"signalscope-go/internal/model"
)

// exchange error codes that describe a server-side condition rather than a bad
// request; code 0 means the body carried no exchange code at all
var transientCodes = map[int64]bool{
	0:     true,
	-1000: true, // unknown error
	-1001: true, // internal disconnect
	-1003: true, // request weight exceeded
}

// RetryPolicy bounds how often and how patiently a data-source call is retried
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy matches the config defaults
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, InitialBackoff: 500 * time.Millisecond, MaxBackoff: 30 * time.Second}
}

func (p RetryPolicy) exponential() *backoff.ExponentialBackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialBackoff
	eb.MaxInterval = p.MaxBackoff
	eb.MaxElapsedTime = 0
	eb.Reset()
	return eb
}

// backOff returns a schedule that stops after MaxAttempts calls or when ctx ends
func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(p.exponential(), uint64(retries)), ctx)
}

type BinanceService struct {
	client *binance.Client
	retry  RetryPolicy
}

// NewBinanceService builds a spot REST client. An empty baseURL keeps the library default.
func NewBinanceService(apiKey, secretKey, baseURL string, retry RetryPolicy) *BinanceService {
	client := binance.NewClient(apiKey, secretKey)
	if baseURL != "" {
		client.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &BinanceService{client: client, retry: retry}
}

// GetKlines fetches closed and in-progress bars, oldest first, retrying transient failures
func (s *BinanceService) GetKlines(ctx context.Context, symbol string, interval model.Timeframe, limit int) ([]model.Candle, error) {
	symbol = strings.ToUpper(symbol)
	logger.Info("🌐 [Binance API] Fetching klines",
		zap.String("symbol", symbol),
		zap.String("interval", interval.String()),
		zap.Int("limit", limit),
	)

	var candles []model.Candle
	op := func() error {
		klines, err := s.client.NewKlinesService().
			Symbol(symbol).
			Interval(interval.String()).
			Limit(limit).
			Do(ctx)
		if err != nil {
			return err
		}

		candles, err = ParseKlines(klines)
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	if err := s.withRetry(ctx, "Kline", symbol, op); err != nil {
		return nil, fmt.Errorf("fetch %s %s klines: %w", symbol, interval, err)
	}

	logger.Info("✅ [Binance API] Fetched klines",
		zap.String("symbol", symbol),
		zap.String("interval", interval.String()),
		zap.Int("count", len(candles)),
	)
	return candles, nil
}

// Get24hStats fetches the rolling 24h ticker for one symbol
func (s *BinanceService) Get24hStats(ctx context.Context, symbol string) (*model.MarketStats, error) {
	symbol = strings.ToUpper(symbol)
	logger.Debug("🌐 [Binance API] Fetching 24h stats", zap.String("symbol", symbol))

	var stats *model.MarketStats
	op := func() error {
		res, err := s.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
		if err != nil {
			return err
		}
		if len(res) == 0 || res[0] == nil {
			return backoff.Permanent(fmt.Errorf("no 24h stats for %s", symbol))
		}

		stats, err = ParseStats(res[0])
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	if err := s.withRetry(ctx, "24h stats", symbol, op); err != nil {
		return nil, fmt.Errorf("fetch %s 24h stats: %w", symbol, err)
	}
	return stats, nil
}

// withRetry runs op on the policy schedule. Errors the exchange will keep
// rejecting stop the loop on the first attempt.
func (s *BinanceService) withRetry(ctx context.Context, what, symbol string, op backoff.Operation) error {
	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		var permanent *backoff.PermanentError
		if err != nil && !errors.As(err, &permanent) && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("⚠️  [Binance API] "+what+" request failed, retrying",
			zap.String("symbol", symbol),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	return backoff.RetryNotify(wrapped, s.retry.backOff(ctx), notify)
}

// retryable reports whether a failed request may succeed on a later attempt.
// Exchange-side rejections (bad symbol, bad interval) never will.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return transientCodes[apiErr.Code]
	}
	return true
}

// ParseKlines converts exchange bars into candles, dropping any bar that fails
// price or OHLC validation
func ParseKlines(klines []*binance.Kline) ([]model.Candle, error) {
	candles := make([]model.Candle, 0, len(klines))
	for idx, k := range klines {
		if k == nil {
			continue
		}
		c, err := parseBar(k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume)
		if err != nil {
			logger.Warn("⚠️  [Binance API] Skipping kline", zap.Int("index", idx), zap.Error(err))
			continue
		}
		candles = append(candles, c)
	}

	if len(candles) == 0 {
		return nil, errors.New("no valid klines after parsing")
	}
	return candles, nil
}

// ParseStats converts the exchange ticker strings into numbers. Prices must be
// valid and positive; a broken volume reads as 0 like it does for klines.
func ParseStats(raw *binance.PriceChangeStats) (*model.MarketStats, error) {
	last, err1 := strconv.ParseFloat(raw.LastPrice, 64)
	high, err2 := strconv.ParseFloat(raw.HighPrice, 64)
	low, err3 := strconv.ParseFloat(raw.LowPrice, 64)
	change, err4 := strconv.ParseFloat(raw.PriceChange, 64)
	changePct, err5 := strconv.ParseFloat(raw.PriceChangePercent, 64)
	if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if !ValidatePrice(last) || !ValidatePrice(high) || !ValidatePrice(low) || high < low {
		return nil, errors.New("invalid 24h price range")
	}

	volume, err := strconv.ParseFloat(raw.Volume, 64)
	if err != nil || !ValidateFloat64(volume) || volume < 0 {
		volume = 0
	}
	quoteVolume, err := strconv.ParseFloat(raw.QuoteVolume, 64)
	if err != nil || !ValidateFloat64(quoteVolume) || quoteVolume < 0 {
		quoteVolume = 0
	}

	return &model.MarketStats{
		Symbol:             raw.Symbol,
		LastPrice:          last,
		PriceChange:        change,
		PriceChangePercent: changePct,
		High:               high,
		Low:                low,
		Volume:             volume,
		QuoteVolume:        quoteVolume,
		OpenTime:           raw.OpenTime / 1000,
		CloseTime:          raw.CloseTime / 1000,
	}, nil
}

// parseBar builds a candle from exchange string fields; openTimeMs is unix milliseconds
func parseBar(openTimeMs int64, openStr, highStr, lowStr, closeStr, volumeStr string) (model.Candle, error) {
	open, err1 := strconv.ParseFloat(openStr, 64)
	high, err2 := strconv.ParseFloat(highStr, 64)
	low, err3 := strconv.ParseFloat(lowStr, 64)
	closePrice, err4 := strconv.ParseFloat(closeStr, 64)
	volume, err5 := strconv.ParseFloat(volumeStr, 64)
	if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
		return model.Candle{}, fmt.Errorf("parse error: %w", err)
	}

	if !ValidatePrice(open) || !ValidatePrice(high) || !ValidatePrice(low) || !ValidatePrice(closePrice) {
		return model.Candle{}, errors.New("invalid price values")
	}

	// High >= Low, High >= Open/Close, Low <= Open/Close
	if high < low || high < open || high < closePrice || low > open || low > closePrice {
		return model.Candle{}, errors.New("invalid OHLC relationship")
	}

	if !ValidateFloat64(volume) || volume < 0 {
		volume = 0
	}

	return model.Candle{
		Time:   openTimeMs / 1000,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}
