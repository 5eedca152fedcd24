package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"signalscope-go/internal/config"
	"signalscope-go/internal/logger"
	"signalscope-go/internal/model"
	"signalscope-go/internal/monitor"
	"signalscope-go/internal/predictor"
	"signalscope-go/internal/service"
	"signalscope-go/internal/worker"
)

func main() {
	timeframe := flag.String("timeframe", "5m", "timeframe to analyze (1m, 5m, 15m, 30m)")
	symbols := flag.String("symbols", "", "comma-separated symbols, defaults to the configured watchlist")
	asJSON := flag.Bool("json", false, "print full predictions as JSON")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("❌ Invalid configuration", zap.Error(err))
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	tf, err := model.ParseTimeframe(*timeframe)
	if err != nil {
		logger.Fatal("❌ Invalid timeframe", zap.Error(err))
	}

	list := cfg.Watchlist
	if *symbols != "" {
		list = strings.Split(*symbols, ",")
	}
	watchlist := service.NewWatchlist(list)

	binanceService := service.NewBinanceService(cfg.BinanceAPIKey, cfg.BinanceSecretKey, cfg.BinanceBaseURL, service.RetryPolicy{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: cfg.Retry.InitialBackoff,
		MaxBackoff:     cfg.Retry.MaxBackoff,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	logger.Info("🧪 Analyzing watchlist", zap.Strings("symbols", watchlist.List()), zap.String("timeframe", tf.String()))

	pool := worker.NewPool(cfg.Workers, cfg.HistoryLimit, binanceService, predictor.New(nil))
	pool.Start(ctx)
	for _, symbol := range watchlist.List() {
		pool.AddJob(worker.Job{Symbol: symbol, Timeframe: tf})
	}
	results := pool.Wait()

	failed := report(os.Stdout, results, *asJSON)
	if failed == len(results) {
		os.Exit(1)
	}
}

// report prints one line (or one JSON document) per result and returns how
// many could not be shown
func report(w io.Writer, results []worker.Result, asJSON bool) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%-10s ERROR %v\n", r.Symbol, r.Err)
			continue
		}
		if asJSON {
			data, err := json.MarshalIndent(r.Prediction, "", "  ")
			if err != nil {
				failed++
				fmt.Fprintf(w, "%-10s ERROR encode prediction: %v\n", r.Symbol, err)
				continue
			}
			fmt.Fprintln(w, string(data))
			continue
		}
		p := r.Prediction
		fmt.Fprintf(w, "%-10s %-8s %5.1f%%  price %s  target %s  signals %d\n",
			r.Symbol,
			strings.ToUpper(string(p.Trend)),
			p.Confidence,
			monitor.FormatPrice(p.Price),
			monitor.FormatPrice(p.TargetPrice),
			len(p.Signals),
		)
	}
	return failed
}
