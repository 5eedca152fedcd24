package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"signalscope-go/internal/logger"
	"signalscope-go/internal/model"
)

type Config struct {
	Symbol           string            `yaml:"symbol"`
	Timeframes       []model.Timeframe `yaml:"timeframes"`
	Port             string            `yaml:"port"`
	BinanceAPIKey    string            `yaml:"binance_api_key"`
	BinanceSecretKey string            `yaml:"binance_secret_key"`
	BinanceBaseURL   string            `yaml:"binance_base_url"`
	BinanceWSURL     string            `yaml:"binance_ws_url"`
	HistoryLimit     int               `yaml:"history_limit"`
	Retry            RetryConfig       `yaml:"retry"`
	TelegramBotToken string            `yaml:"telegram_bot_token"`
	TelegramChatID   string            `yaml:"telegram_chat_id"`
	LogLevel         string            `yaml:"log_level"`
	LogFormat        string            `yaml:"log_format"`
	Watchlist        []string          `yaml:"watchlist"`
	Workers          int               `yaml:"workers"`
}

// RetryConfig bounds data-source retries
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Symbol:         "BTCUSDT",
		Timeframes:     []model.Timeframe{model.Timeframe5m},
		Port:           "8080",
		BinanceBaseURL: "https://api.binance.com",
		BinanceWSURL:   "wss://stream.binance.com:9443/ws",
		HistoryLimit:   500,
		Retry: RetryConfig{
			MaxAttempts:    5,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     30 * time.Second,
		},
		LogLevel:  "info",
		LogFormat: "console",
		Watchlist: []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "BNBUSDT", "XRPUSDT"},
		Workers:   4,
	}
}

// Load builds the configuration from defaults, then the optional YAML file named
// by CONFIG_FILE, then environment variables (a .env file is read first if present)
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("✅ Configuration loaded",
		zap.String("symbol", cfg.Symbol),
		zap.Any("timeframes", cfg.Timeframes),
		zap.Int("history_limit", cfg.HistoryLimit),
	)
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Symbol = strings.ToUpper(getEnv("SYMBOL", c.Symbol))
	c.Port = getEnv("PORT", c.Port)
	c.BinanceAPIKey = getEnv("BINANCE_API_KEY", c.BinanceAPIKey)
	c.BinanceSecretKey = getEnv("BINANCE_SECRET_KEY", c.BinanceSecretKey)
	c.BinanceBaseURL = getEnv("BINANCE_BASE_URL", c.BinanceBaseURL)
	c.BinanceWSURL = getEnv("BINANCE_WS_URL", c.BinanceWSURL)
	c.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", c.TelegramChatID)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	if raw := getEnvAsSlice("TIMEFRAMES", ""); raw != nil {
		c.Timeframes = c.Timeframes[:0]
		for _, tf := range raw {
			c.Timeframes = append(c.Timeframes, model.Timeframe(tf))
		}
	}
	if raw := getEnvAsSlice("WATCHLIST", ""); raw != nil {
		c.Watchlist = raw
	}

	var err error
	if c.HistoryLimit, err = getEnvAsInt("HISTORY_LIMIT", c.HistoryLimit); err != nil {
		return err
	}
	if c.Workers, err = getEnvAsInt("WORKERS", c.Workers); err != nil {
		return err
	}
	if c.Retry.MaxAttempts, err = getEnvAsInt("RETRY_MAX_ATTEMPTS", c.Retry.MaxAttempts); err != nil {
		return err
	}
	if c.Retry.InitialBackoff, err = getEnvAsDuration("RETRY_INITIAL_BACKOFF", c.Retry.InitialBackoff); err != nil {
		return err
	}
	if c.Retry.MaxBackoff, err = getEnvAsDuration("RETRY_MAX_BACKOFF", c.Retry.MaxBackoff); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the analyzer or data source cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Symbol == "" {
		errs = append(errs, errors.New("symbol is required"))
	}
	if len(c.Timeframes) == 0 {
		errs = append(errs, errors.New("at least one timeframe is required"))
	}
	for _, tf := range c.Timeframes {
		if !tf.Valid() {
			errs = append(errs, fmt.Errorf("%w: %q", model.ErrTimeframeNotSupported, tf))
		}
	}
	if c.HistoryLimit < 200 || c.HistoryLimit > 1000 {
		errs = append(errs, fmt.Errorf("history limit %d outside [200, 1000]", c.HistoryLimit))
	}
	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}
	if c.Retry.InitialBackoff <= 0 || c.Retry.MaxBackoff < c.Retry.InitialBackoff {
		errs = append(errs, errors.New("retry backoff must be positive and max >= initial"))
	}
	if c.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}

	return errors.Join(errs...)
}

// TelegramEnabled reports whether shift alerts can be delivered
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if value == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
