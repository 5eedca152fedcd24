package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"signalscope-go/internal/logger"
	"signalscope-go/internal/model"
	"signalscope-go/internal/predictor"
)

// Fetcher loads candle history for one symbol
type Fetcher interface {
	GetKlines(ctx context.Context, symbol string, interval model.Timeframe, limit int) ([]model.Candle, error)
}

type Job struct {
	Symbol    string
	Timeframe model.Timeframe
}

// Result is the outcome of one job; exactly one of Prediction and Err is set
type Result struct {
	Symbol     string
	Timeframe  model.Timeframe
	Prediction *predictor.Prediction
	Err        error
}

type WorkerPool struct {
	workers   int
	limit     int
	jobs      chan Job
	results   chan Result
	collected []Result
	wg        sync.WaitGroup
	done      chan struct{}
	fetcher   Fetcher
	predictor *predictor.Predictor
}

// NewPool creates a new worker pool; limit is the history length fetched per job
func NewPool(workers, limit int, fetcher Fetcher, p *predictor.Predictor) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers:   workers,
		limit:     limit,
		jobs:      make(chan Job, 100),
		results:   make(chan Result, 100),
		done:      make(chan struct{}),
		fetcher:   fetcher,
		predictor: p,
	}
}

// Start launches the worker goroutines and the result collector
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	go func() {
		defer close(p.done)
		for r := range p.results {
			p.collected = append(p.collected, r)
		}
	}()
}

// worker processes jobs from the jobs channel
func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		p.results <- p.run(ctx, id, job)
	}
}

func (p *WorkerPool) run(ctx context.Context, id int, job Job) (res Result) {
	res = Result{Symbol: job.Symbol, Timeframe: job.Timeframe}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("❌ [PANIC RECOVERED] worker job", zap.String("symbol", job.Symbol), zap.Any("panic", r))
			res.Err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	candles, err := p.fetcher.GetKlines(ctx, job.Symbol, job.Timeframe, p.limit)
	if err != nil {
		logger.Warn("⚠️  Worker failed to fetch", zap.Int("worker", id), zap.String("symbol", job.Symbol), zap.Error(err))
		res.Err = err
		return res
	}

	pred, err := p.predictor.Analyze(candles, job.Timeframe)
	if err != nil {
		logger.Warn("⚠️  Worker failed to analyze", zap.Int("worker", id), zap.String("symbol", job.Symbol), zap.Error(err))
		res.Err = err
		return res
	}

	res.Prediction = pred
	return res
}

// AddJob adds a job to the queue
func (p *WorkerPool) AddJob(job Job) {
	p.jobs <- job
}

// Wait closes the jobs channel, waits for all workers to finish and returns
// the results ordered by symbol, then timeframe
func (p *WorkerPool) Wait() []Result {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
	<-p.done

	sort.Slice(p.collected, func(i, j int) bool {
		a, b := p.collected[i], p.collected[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Timeframe.Seconds() < b.Timeframe.Seconds()
	})
	return p.collected
}
