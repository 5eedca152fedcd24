package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"signalscope-go/internal/api"
	"signalscope-go/internal/config"
	"signalscope-go/internal/loader"
	"signalscope-go/internal/logger"
	"signalscope-go/internal/predictor"
	"signalscope-go/internal/service"
	"signalscope-go/internal/session"
)

func main() {
	// Global panic recovery
	defer service.RecoverAndLog("main")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("❌ Invalid configuration", zap.Error(err))
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	logger.Info("🔧 Initializing services...")

	retry := service.RetryPolicy{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: cfg.Retry.InitialBackoff,
		MaxBackoff:     cfg.Retry.MaxBackoff,
	}
	binanceService := service.NewBinanceService(cfg.BinanceAPIKey, cfg.BinanceSecretKey, cfg.BinanceBaseURL, retry)
	klineStream := service.NewKlineStream(cfg.BinanceWSURL, retry)

	telegramService, err := service.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		logger.Fatal("❌ Failed to initialize Telegram service", zap.Error(err))
	}

	registry := session.NewRegistry(predictor.New(nil))
	loaderService := loader.NewLoader(loader.Options{
		Symbol:       cfg.Symbol,
		Timeframes:   cfg.Timeframes,
		HistoryLimit: cfg.HistoryLimit,
	}, registry, binanceService, klineStream, telegramService)

	logger.Info("✅ All services initialized successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loaderService.Start(ctx); err != nil {
		logger.Fatal("❌ Failed to start loader", zap.Error(err))
	}

	service.SafeGo("telegram commands", func() {
		telegramService.HandleCommands(ctx, loaderService.Commands())
	})

	server := api.NewServer(api.ServerConfig{
		Port:           cfg.Port,
		Symbol:         cfg.Symbol,
		Timeframes:     cfg.Timeframes,
		ProductionMode: cfg.LogFormat == "json",
	}, registry, binanceService)
	service.SafeGo("http server", func() {
		if err := server.Start(); err != nil {
			logger.Error("❌ HTTP server failed", zap.Error(err))
			stop()
		}
	})

	logger.Info("🚀 SignalScope is now running...")
	<-ctx.Done()
	logger.Info("🛑 Received shutdown signal...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("⚠️  HTTP shutdown incomplete", zap.Error(err))
	}
	loaderService.Stop()
	logger.Info("👋 Shutdown complete")
}
