package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"signalscope-go/internal/logger"
	"signalscope-go/internal/model"
	"signalscope-go/internal/monitor"
	"signalscope-go/internal/predictor"
	"signalscope-go/internal/service"
	"signalscope-go/internal/session"
)

// Fetcher loads candle history
type Fetcher interface {
	GetKlines(ctx context.Context, symbol string, interval model.Timeframe, limit int) ([]model.Candle, error)
}

// Streamer follows live bars until ctx is done
type Streamer interface {
	Run(ctx context.Context, symbol string, interval model.Timeframe, handler func(model.Candle)) error
}

// Notifier receives significant shifts
type Notifier interface {
	NotifyShift(symbol string, tf model.Timeframe, shift monitor.Shift, next *predictor.Prediction) error
}

type Options struct {
	Symbol       string
	Timeframes   []model.Timeframe
	HistoryLimit int
}

// Loader keeps one live session per configured timeframe: it seeds history,
// follows the stream and re-runs the analysis on a per-timeframe schedule
type Loader struct {
	opts     Options
	registry *session.Registry
	fetcher  Fetcher
	stream   Streamer
	notifier Notifier

	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLoader creates a new loader instance. stream and notifier may be nil.
func NewLoader(opts Options, registry *session.Registry, fetcher Fetcher, stream Streamer, notifier Notifier) *Loader {
	opts.Symbol = strings.ToUpper(opts.Symbol)
	return &Loader{
		opts:     opts,
		registry: registry,
		fetcher:  fetcher,
		stream:   stream,
		notifier: notifier,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{}),
			cron.SkipIfStillRunning(cronLogger{}),
		)),
	}
}

// Start seeds every session, starts the streams and begins the scheduled analysis
func (l *Loader) Start(ctx context.Context) error {
	logger.Info("🚀 Starting prediction loader...",
		zap.String("symbol", l.opts.Symbol),
		zap.Any("timeframes", l.opts.Timeframes),
	)

	ctx, l.cancel = context.WithCancel(ctx)

	for _, tf := range l.opts.Timeframes {
		sess := l.registry.Open(l.opts.Symbol, tf)

		if err := l.seed(ctx, sess); err != nil {
			l.cancel()
			return err
		}

		if l.stream != nil {
			l.follow(ctx, sess)
		}

		spec := "@every " + tf.RefreshInterval().String()
		if _, err := l.cron.AddFunc(spec, func() { l.Poll(sess) }); err != nil {
			l.cancel()
			return fmt.Errorf("schedule %s: %w", tf, err)
		}
		logger.Info("⏰ Scheduler registered",
			zap.String("timeframe", tf.String()),
			zap.Duration("every", tf.RefreshInterval()),
		)

		l.Poll(sess)
	}

	l.cron.Start()
	return nil
}

func (l *Loader) seed(ctx context.Context, sess *session.Session) error {
	candles, err := l.fetcher.GetKlines(ctx, sess.Symbol, sess.Timeframe, l.opts.HistoryLimit)
	if err != nil {
		return fmt.Errorf("load %s %s history: %w", sess.Symbol, sess.Timeframe, err)
	}
	sess.Candles().Load(candles)
	logger.Info("📊 History loaded",
		zap.String("symbol", sess.Symbol),
		zap.String("timeframe", sess.Timeframe.String()),
		zap.Int("candles", sess.Candles().Len()),
	)
	return nil
}

func (l *Loader) follow(ctx context.Context, sess *session.Session) {
	l.wg.Add(1)
	service.SafeGo("stream "+sess.Symbol+"@"+sess.Timeframe.String(), func() {
		defer l.wg.Done()
		if err := l.stream.Run(ctx, sess.Symbol, sess.Timeframe, func(c model.Candle) {
			sess.Candles().Upsert(c)
		}); err != nil {
			logger.Error("❌ Stream stopped", zap.String("timeframe", sess.Timeframe.String()), zap.Error(err))
		}
	})
}

// Poll executes one analysis cycle for a session
func (l *Loader) Poll(sess *session.Session) (*session.Result, error) {
	start := time.Now()
	tf := sess.Timeframe.String()

	result, err := sess.Run()
	if err != nil {
		if errors.Is(err, model.ErrInsufficientData) {
			logger.Warn("⏳ Waiting for more candles", zap.String("timeframe", tf), zap.Int("have", sess.Candles().Len()))
		} else {
			logger.Error("❌ Analysis failed", zap.String("timeframe", tf), zap.Error(err))
		}
		return nil, err
	}

	pred := result.Prediction
	logger.Info("🔄 Prediction updated",
		zap.String("symbol", sess.Symbol),
		zap.String("timeframe", tf),
		zap.String("trend", string(pred.Trend)),
		zap.Float64("confidence", pred.Confidence),
		zap.Float64("target", pred.TargetPrice),
		zap.Duration("took", time.Since(start)),
	)

	if result.Shift.Significant {
		logger.Warn("🚨 MARKET SHIFT DETECTED",
			zap.String("symbol", sess.Symbol),
			zap.String("timeframe", tf),
			zap.String("reason", result.Shift.String()),
		)
		if l.notifier != nil {
			if err := l.notifier.NotifyShift(sess.Symbol, sess.Timeframe, result.Shift, pred); err != nil {
				logger.Warn("⚠️  Failed to send shift notification", zap.String("timeframe", tf), zap.Error(err))
			}
		}
	}

	return result, nil
}

// Stop halts scheduling, waits for running jobs and closes the streams
func (l *Loader) Stop() {
	logger.Info("🛑 Stopping loader...")
	<-l.cron.Stop().Done()
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
	logger.Info("✅ Loader stopped")
}

// cronLogger routes scheduler messages through zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.GetLogger().Sugar().Debugw("[cron] "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.GetLogger().Sugar().Errorw("[cron] "+msg, append(keysAndValues, "error", err)...)
}
