package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"signalscope-go/internal/logger"
	"signalscope-go/internal/model"
)

const (
	handshakeTimeout = 10 * time.Second
	// binance drops idle connections after a minute without a pong
	readTimeout = 90 * time.Second
)

// KlineStream follows live bars over the exchange websocket
type KlineStream struct {
	baseURL string
	retry   RetryPolicy
	dialer  websocket.Dialer
}

func NewKlineStream(baseURL string, retry RetryPolicy) *KlineStream {
	return &KlineStream{
		baseURL: strings.TrimRight(baseURL, "/"),
		retry:   retry,
		dialer:  websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}
}

// StreamURL returns the raw-stream endpoint for one symbol and interval
func (s *KlineStream) StreamURL(symbol string, interval model.Timeframe) string {
	return fmt.Sprintf("%s/%s@kline_%s", s.baseURL, strings.ToLower(symbol), interval)
}

// Run delivers every decoded bar to handler until ctx is cancelled. Dropped
// connections are re-established on an exponential schedule that resets after
// each successful dial.
func (s *KlineStream) Run(ctx context.Context, symbol string, interval model.Timeframe, handler func(model.Candle)) error {
	url := s.StreamURL(symbol, interval)
	schedule := s.retry.exponential()

	for {
		err := s.session(ctx, url, handler, schedule.Reset)
		if ctx.Err() != nil {
			logger.Info("🔌 [Stream] Stopped", zap.String("url", url))
			return nil
		}

		wait := schedule.NextBackOff()
		logger.Warn("⚠️  [Stream] Connection lost, reconnecting",
			zap.String("url", url),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// session runs one connection until it fails
func (s *KlineStream) session(ctx context.Context, url string, handler func(model.Candle), connected func()) error {
	conn, resp, err := s.dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial failed, status=%d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	connected()
	logger.Info("✅ [Stream] Connected", zap.String("url", url))

	// unblock ReadMessage on shutdown
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(handshakeTimeout))
	})

	for {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return err
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		candle, err := DecodeKlineMessage(data)
		if err != nil {
			logger.Debug("⚠️  [Stream] Skipping message", zap.Error(err))
			continue
		}
		handler(candle)
	}
}

// DecodeKlineMessage turns one stream frame into a candle. The frame carries
// keys differing only in case ("t"/"T", "l"/"L", "v"/"V"), so it is decoded
// into the exchange client's event type whose tags match every key exactly.
func DecodeKlineMessage(data []byte) (model.Candle, error) {
	var ev binance.WsKlineEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return model.Candle{}, fmt.Errorf("decode kline event: %w", err)
	}
	if ev.Event != "kline" {
		return model.Candle{}, errors.New("not a kline event")
	}
	k := ev.Kline
	return parseBar(k.StartTime, k.Open, k.High, k.Low, k.Close, k.Volume)
}
