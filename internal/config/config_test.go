package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"signalscope-go/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TIMEFRAMES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Symbol != "BTCUSDT" || cfg.HistoryLimit != 500 || cfg.Retry.MaxAttempts != 5 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled without credentials")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signalscope.yaml")
	yaml := `
symbol: ETHUSDT
timeframes: [1m, 15m]
history_limit: 300
retry:
  max_attempts: 3
  initial_backoff: 250ms
  max_backoff: 5s
watchlist: [ETHUSDT, SOLUSDT]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TIMEFRAMES", "")
	t.Setenv("SYMBOL", "solusdt")
	t.Setenv("RETRY_MAX_BACKOFF", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Symbol != "SOLUSDT" {
		t.Errorf("symbol = %s, env should win", cfg.Symbol)
	}
	if !slices.Equal(cfg.Timeframes, []model.Timeframe{model.Timeframe1m, model.Timeframe15m}) {
		t.Errorf("timeframes = %v", cfg.Timeframes)
	}
	if cfg.HistoryLimit != 300 {
		t.Errorf("history limit = %d", cfg.HistoryLimit)
	}
	want := RetryConfig{MaxAttempts: 3, InitialBackoff: 250 * time.Millisecond, MaxBackoff: 10 * time.Second}
	if cfg.Retry != want {
		t.Errorf("retry = %+v, want %+v", cfg.Retry, want)
	}
	if !slices.Equal(cfg.Watchlist, []string{"ETHUSDT", "SOLUSDT"}) {
		t.Errorf("watchlist = %v", cfg.Watchlist)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TIMEFRAMES", "5m, 4h")

	_, err := Load()
	if !errors.Is(err, model.ErrTimeframeNotSupported) {
		t.Fatalf("err = %v, want unsupported timeframe", err)
	}

	t.Setenv("TIMEFRAMES", "")
	t.Setenv("WORKERS", "many")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error for WORKERS")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"short history", func(c *Config) { c.HistoryLimit = 150 }, true},
		{"no timeframes", func(c *Config) { c.Timeframes = nil }, true},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, true},
		{"inverted backoff", func(c *Config) { c.Retry.MaxBackoff = time.Millisecond }, true},
		{"no workers", func(c *Config) { c.Workers = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
