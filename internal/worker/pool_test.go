package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"signalscope-go/internal/model"
	"signalscope-go/internal/predictor"
)

func flatCandles(n int, price float64) []model.Candle {
	candles := make([]model.Candle, n)
	for i := range candles {
		candles[i] = model.Candle{Time: int64(i) * 60, Open: price, High: price, Low: price, Close: price, Volume: 1000}
	}
	return candles
}

// fetcherFunc adapts a function to Fetcher
type fetcherFunc func(symbol string) ([]model.Candle, error)

func (f fetcherFunc) GetKlines(_ context.Context, symbol string, _ model.Timeframe, _ int) ([]model.Candle, error) {
	return f(symbol)
}

func TestPoolCollectsEveryJob(t *testing.T) {
	errDown := errors.New("exchange down")
	fetch := fetcherFunc(func(symbol string) ([]model.Candle, error) {
		switch symbol {
		case "FAILUSDT":
			return nil, errDown
		case "SHORTUSDT":
			return flatCandles(50, 1), nil
		case "PANICUSDT":
			panic("bad payload")
		}
		return flatCandles(250, 100), nil
	})

	pool := NewPool(3, 250, fetch, predictor.New(predictor.FixedSource(0.5)))
	pool.Start(context.Background())

	// more jobs than the channel buffers hold
	for i := 0; i < 150; i++ {
		pool.AddJob(Job{Symbol: fmt.Sprintf("S%03dUSDT", i), Timeframe: model.Timeframe5m})
	}
	for _, s := range []string{"FAILUSDT", "SHORTUSDT", "PANICUSDT"} {
		pool.AddJob(Job{Symbol: s, Timeframe: model.Timeframe1m})
	}

	results := pool.Wait()
	if len(results) != 153 {
		t.Fatalf("got %d results, want 153", len(results))
	}

	byName := make(map[string]Result, len(results))
	for _, r := range results {
		if (r.Prediction == nil) == (r.Err == nil) {
			t.Errorf("%s: exactly one of prediction and error must be set", r.Symbol)
		}
		byName[r.Symbol] = r
	}

	if !errors.Is(byName["FAILUSDT"].Err, errDown) {
		t.Errorf("FAILUSDT err = %v", byName["FAILUSDT"].Err)
	}
	if !errors.Is(byName["SHORTUSDT"].Err, model.ErrInsufficientData) {
		t.Errorf("SHORTUSDT err = %v", byName["SHORTUSDT"].Err)
	}
	if byName["PANICUSDT"].Err == nil {
		t.Error("panicking job should report an error")
	}
	if p := byName["S000USDT"].Prediction; p == nil || p.Timeframe != model.Timeframe5m || p.Trend != predictor.TrendNeutral {
		t.Errorf("S000USDT prediction = %+v", p)
	}

	if results[0].Symbol != "FAILUSDT" || results[len(results)-1].Symbol != "SHORTUSDT" {
		t.Errorf("results not sorted: first %s, last %s", results[0].Symbol, results[len(results)-1].Symbol)
	}
}

func TestPoolCancelledContext(t *testing.T) {
	calls := 0
	fetch := fetcherFunc(func(string) ([]model.Candle, error) {
		calls++
		return flatCandles(250, 100), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(0, 250, fetch, predictor.New(nil))
	pool.Start(ctx)
	pool.AddJob(Job{Symbol: "BTCUSDT", Timeframe: model.Timeframe1m})
	results := pool.Wait()

	if len(results) != 1 || !errors.Is(results[0].Err, context.Canceled) {
		t.Fatalf("results = %+v", results)
	}
	if calls != 0 {
		t.Errorf("fetcher called %d times after cancel", calls)
	}
}
