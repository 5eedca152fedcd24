package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/gorilla/websocket"

	"signalscope-go/internal/model"
	"signalscope-go/internal/monitor"
	"signalscope-go/internal/predictor"
)

var fastRetry = RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}

func TestParseKlines(t *testing.T) {
	klines := []*binance.Kline{
		{OpenTime: 1700000000000, Open: "100", High: "105", Low: "99", Close: "104", Volume: "12.5"},
		{OpenTime: 1700000060000, Open: "abc", High: "105", Low: "99", Close: "104", Volume: "1"},
		{OpenTime: 1700000120000, Open: "100", High: "98", Low: "99", Close: "99", Volume: "1"},
		{OpenTime: 1700000180000, Open: "0", High: "1", Low: "0", Close: "1", Volume: "1"},
		nil,
		{OpenTime: 1700000240000, Open: "104", High: "106", Low: "103", Close: "105", Volume: "-3"},
	}

	candles, err := ParseKlines(klines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2: %+v", len(candles), candles)
	}

	want := model.Candle{Time: 1700000000, Open: 100, High: 105, Low: 99, Close: 104, Volume: 12.5}
	if candles[0] != want {
		t.Errorf("candle = %+v, want %+v", candles[0], want)
	}
	if candles[1].Time != 1700000240 || candles[1].Volume != 0 {
		t.Errorf("second candle = %+v", candles[1])
	}

	if _, err := ParseKlines(klines[1:3]); err == nil {
		t.Error("expected error when every bar is invalid")
	}
}

func klineRow(openTimeMs int64, o, h, l, c string) string {
	return fmt.Sprintf(`[%d,"%s","%s","%s","%s","10.0",%d,"1000.0",5,"5.0","500.0","0"]`,
		openTimeMs, o, h, l, c, openTimeMs+59999)
}

func TestGetKlinesRetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "ETHUSDT" || q.Get("interval") != "5m" || q.Get("limit") != "2" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}

		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"code":-1001,"msg":"Internal error; unable to process your request."}`)
			return
		}
		fmt.Fprintf(w, "[%s,%s]", klineRow(1700000000000, "10", "11", "9", "10.5"), klineRow(1700000300000, "10.5", "12", "10", "11"))
	}))
	defer srv.Close()

	svc := NewBinanceService("", "", srv.URL, fastRetry)
	candles, err := svc.GetKlines(context.Background(), "ethusdt", model.Timeframe5m, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2", hits.Load())
	}
	if len(candles) != 2 || candles[1].Time != 1700000300 || candles[1].Close != 11 {
		t.Errorf("candles = %+v", candles)
	}
}

func TestGetKlinesStopsOnRejection(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	}))
	defer srv.Close()

	svc := NewBinanceService("", "", srv.URL, fastRetry)
	if _, err := svc.GetKlines(context.Background(), "NOPEUSDT", model.Timeframe1m, 10); err == nil {
		t.Fatal("expected error")
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, rejected requests should not be retried", hits.Load())
	}
}

func TestGetKlinesGivesUpAfterMaxAttempts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"code":-1000,"msg":"An unknown error occurred."}`)
	}))
	defer srv.Close()

	svc := NewBinanceService("", "", srv.URL, fastRetry)
	if _, err := svc.GetKlines(context.Background(), "BTCUSDT", model.Timeframe1m, 10); err == nil {
		t.Fatal("expected error")
	}
	if hits.Load() != int32(fastRetry.MaxAttempts) {
		t.Errorf("hits = %d, want %d", hits.Load(), fastRetry.MaxAttempts)
	}
}

const tickerBody = `{"symbol":"BTCUSDT","priceChange":"-94.99999800","priceChangePercent":"-95.960","weightedAvgPrice":"0.29628482","prevClosePrice":"0.10002000","lastPrice":"43250.50","lastQty":"200.00000000","bidPrice":"4.00000000","bidQty":"100.00000000","askPrice":"4.00000200","askQty":"100.00000000","openPrice":"99.00000000","highPrice":"44000.00","lowPrice":"42100.25","volume":"8913.30000000","quoteVolume":"15.30000000","openTime":1699913600000,"closeTime":1700000000000,"firstId":28385,"lastId":28460,"count":76}`

func TestGet24hStats(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/24hr" || r.URL.Query().Get("symbol") != "BTCUSDT" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"code":-1003,"msg":"Too many requests."}`)
			return
		}
		fmt.Fprint(w, tickerBody)
	}))
	defer srv.Close()

	svc := NewBinanceService("", "", srv.URL, fastRetry)
	stats, err := svc.Get24hStats(context.Background(), "btcusdt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2", hits.Load())
	}

	want := model.MarketStats{
		Symbol:             "BTCUSDT",
		LastPrice:          43250.5,
		PriceChange:        -94.999998,
		PriceChangePercent: -95.96,
		High:               44000,
		Low:                42100.25,
		Volume:             8913.3,
		QuoteVolume:        15.3,
		OpenTime:           1699913600,
		CloseTime:          1700000000,
	}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}

func TestGet24hStatsRejectsBadTicker(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		hits int32
	}{
		{"unknown symbol", http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`, 1},
		{"inverted range", http.StatusOK, `{"symbol":"BTCUSDT","lastPrice":"10","highPrice":"9","lowPrice":"11","priceChange":"0","priceChangePercent":"0","volume":"1","quoteVolume":"1"}`, 1},
		{"unparsable price", http.StatusOK, `{"symbol":"BTCUSDT","lastPrice":"n/a","highPrice":"9","lowPrice":"8","priceChange":"0","priceChangePercent":"0","volume":"1","quoteVolume":"1"}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.code)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			svc := NewBinanceService("", "", srv.URL, fastRetry)
			if _, err := svc.Get24hStats(context.Background(), "BTCUSDT"); err == nil {
				t.Fatal("expected error")
			}
			if hits.Load() != tt.hits {
				t.Errorf("hits = %d, want %d", hits.Load(), tt.hits)
			}
		})
	}
}

func TestDecodeKlineMessage(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    model.Candle
		wantErr bool
	}{
		{
			name: "kline",
			data: `{"e":"kline","E":1700000001000,"s":"BTCUSDT","k":{"t":1700000000000,"T":1700000059999,"s":"BTCUSDT","i":"1m","o":"100.0","c":"101.5","h":"102.0","l":"99.5","v":"3.25","x":false}}`,
			want: model.Candle{Time: 1700000000, Open: 100, High: 102, Low: 99.5, Close: 101.5, Volume: 3.25},
		},
		{
			name: "full exchange payload",
			data: `{"e":"kline","E":1700000001000,"s":"BTCUSDT","k":{"t":1700000000000,"T":1700000059999,"s":"BTCUSDT","i":"1m","f":100,"L":200,"o":"100.0","c":"101.5","h":"102.0","l":"99.5","v":"3.25","n":100,"x":false,"q":"325.0","V":"1.5","Q":"150.0","B":"0"}}`,
			want: model.Candle{Time: 1700000000, Open: 100, High: 102, Low: 99.5, Close: 101.5, Volume: 3.25},
		},
		{
			name: "closed bar keeps open time and base volume",
			data: `{"e":"kline","E":1700000060001,"s":"ETHUSDT","k":{"t":1700000000000,"T":1700000059999,"s":"ETHUSDT","i":"1m","f":1,"L":2,"o":"10","c":"11","h":"12","l":"9","v":"40","n":2,"x":true,"q":"400","V":"7","Q":"70","B":"0"}}`,
			want: model.Candle{Time: 1700000000, Open: 10, High: 12, Low: 9, Close: 11, Volume: 40},
		},
		{name: "other event", data: `{"e":"trade","s":"BTCUSDT"}`, wantErr: true},
		{name: "garbage", data: `not json`, wantErr: true},
		{
			name:    "broken ohlc",
			data:    `{"e":"kline","k":{"t":1,"o":"100","c":"100","h":"90","l":"95","v":"1"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeKlineMessage([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestKlineStreamReconnects(t *testing.T) {
	var conns atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/btcusdt@kline_1m" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		n := conns.Add(1)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"e":"24hrTicker"}`))
		msg := fmt.Sprintf(`{"e":"kline","k":{"t":%d,"o":"1","c":"1","h":"1","l":"1","v":"1"}}`, int64(n)*60000)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
		// drop the connection to force a reconnect
	}))
	defer srv.Close()

	stream := NewKlineStream("ws"+strings.TrimPrefix(srv.URL, "http"), fastRetry)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []int64
	done := make(chan error, 1)
	go func() {
		done <- stream.Run(ctx, "BTCUSDT", model.Timeframe1m, func(c model.Candle) {
			got = append(got, c.Time)
			if len(got) == 2 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("stream did not stop")
	}

	if !slices.Equal(got, []int64{60, 120}) {
		t.Errorf("bars = %v, want [60 120]", got)
	}
	if conns.Load() < 2 {
		t.Errorf("connections = %d, want a reconnect", conns.Load())
	}
}

func TestStreamURL(t *testing.T) {
	s := NewKlineStream("wss://stream.binance.com:9443/ws/", DefaultRetryPolicy())
	if got := s.StreamURL("ETHUSDT", model.Timeframe15m); got != "wss://stream.binance.com:9443/ws/ethusdt@kline_15m" {
		t.Errorf("url = %s", got)
	}
}

func TestWatchlist(t *testing.T) {
	w := NewWatchlist([]string{"btcusdt", " ETHUSDT ", "BTCUSDT", "ETHBTC", "USDT"})
	if got := w.List(); !slices.Equal(got, []string{"BTCUSDT", "ETHUSDT"}) {
		t.Fatalf("list = %v", got)
	}

	if err := w.Add("solusdt"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := w.Add("SOLBTC"); err != ErrInvalidSymbol {
		t.Errorf("err = %v, want ErrInvalidSymbol", err)
	}
	if !w.Remove("btcusdt") || w.Remove("BTCUSDT") {
		t.Error("remove should succeed exactly once")
	}
	if got := w.List(); !slices.Equal(got, []string{"ETHUSDT", "SOLUSDT"}) {
		t.Errorf("list = %v", got)
	}
}

func TestTelegramNotifierDisabled(t *testing.T) {
	n, err := NewTelegramNotifier("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Enabled() {
		t.Error("notifier without token should be disabled")
	}
	if err := n.NotifyShift("BTCUSDT", model.Timeframe5m, monitor.Shift{}, &predictor.Prediction{}); err != nil {
		t.Errorf("disabled notifier returned %v", err)
	}
	n.HandleCommands(context.Background(), Commands{})
}

func TestTelegramNotifierSendsShift(t *testing.T) {
	var sent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"signalscope","username":"signalscope_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			if r.Form.Get("chat_id") != "42" || r.Form.Get("parse_mode") != "HTML" {
				t.Errorf("unexpected form %v", r.Form)
			}
			sent.Store(r.Form.Get("text"))
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
		default:
			t.Errorf("unexpected call %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	n, err := newTelegramNotifier("token", "42", srv.URL+"/bot%s/%s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shift := monitor.Shift{Significant: true, Reasons: []string{"Trend changed from neutral to bullish"}}
	next := &predictor.Prediction{Trend: predictor.TrendBullish, Confidence: 71, Price: 100, TargetPrice: 104}
	if err := n.NotifyShift("BTCUSDT", model.Timeframe5m, shift, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, _ := sent.Load().(string)
	if !strings.HasPrefix(text, "<b>🚨 MARKET SHIFT DETECTED</b>\n") {
		t.Errorf("text = %q", text)
	}
	if !strings.Contains(text, "• Trend changed from neutral to bullish") {
		t.Errorf("reason missing from %q", text)
	}
}

func TestNewTelegramNotifierRejectsBadChatID(t *testing.T) {
	if _, err := NewTelegramNotifier("token", "not-a-number"); err == nil {
		t.Error("expected chat id error")
	}
}

func TestCommandsReply(t *testing.T) {
	cmds := Commands{
		"status": func(string) string { return "ok" },
		"echo":   func(args string) string { return "<" + args + ">" },
	}

	tests := []struct {
		command, args, want string
	}{
		{"status", "", "ok"},
		{"echo", "  5m ", "<5m>"},
		{"help", "", "<b>Commands</b>\n/echo\n/status\n/help"},
		{"nope", "", "Unknown command. Use /help to see available commands."},
	}
	for _, tt := range tests {
		if got := cmds.reply(tt.command, tt.args); got != tt.want {
			t.Errorf("reply(%q) = %q, want %q", tt.command, got, tt.want)
		}
	}
}

func TestValidatePrice(t *testing.T) {
	for _, p := range []float64{0, -1, 1e10} {
		if ValidatePrice(p) {
			t.Errorf("ValidatePrice(%v) = true", p)
		}
	}
	if !ValidatePrice(0.00001) {
		t.Error("small positive price rejected")
	}
}

func TestSafeGoRecovers(t *testing.T) {
	done := make(chan struct{})
	SafeGo("panicker", func() {
		defer close(done)
		panic("boom")
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}
