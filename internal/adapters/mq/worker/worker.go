// Package worker analyzes queued trace submissions and records the reports.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/model"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/pkg/logger"
	"github.com/okian/fieldtrace/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Submission
}

// Resolver picks the season a submission is analyzed under.
type Resolver interface {
	Resolve(year int) (season.Season, error)
}

// Recorder stores match reports.
type Recorder interface {
	Record(ctx context.Context, report model.MatchReport) (analysis.TeamSummary, error)
}

// Worker processes submissions until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// counters is shared by the workers of one pool.
type counters struct {
	processed atomic.Int64
	failed    atomic.Int64
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	seasons  Resolver
	recorder Recorder
	name     string
	bins     int
	now      func() time.Time
	counts   *counters

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

var _ Worker = (*InMemoryWorker)(nil)

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, seasons Resolver, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		seasons:  seasons,
		recorder: recorder,
		name:     "worker",
		bins:     analysis.DefaultBins,
		now:      time.Now,
		counts:   &counters{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-items:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if !sub.ReceivedAt.IsZero() {
				metrics.RecordQueueWait(float64(w.now().Sub(sub.ReceivedAt).Microseconds()) / 1000)
			}
			if err := w.process(ctx, sub); err != nil {
				w.counts.failed.Add(1)
				w.logger.Error(ctx, "error processing submission",
					logger.String("submission_id", sub.ID),
					logger.Error(err),
				)
				continue
			}
			w.counts.processed.Add(1)
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process analyzes one submission and records the report.
func (w *InMemoryWorker) process(ctx context.Context, sub model.Submission) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	metrics.AddWorkerActive(1)
	defer metrics.AddWorkerActive(-1)

	if sub.Trace == nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "empty_trace")
		return fmt.Errorf("submission %s has no trace", sub.ID)
	}

	s, err := w.seasons.Resolve(sub.Season)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "unknown_season")
		return fmt.Errorf("resolve season for %s: %w", sub.ID, err)
	}

	start := time.Now()
	report := analysis.Analyze(sub.Trace, s, w.bins)
	metrics.RecordAnalysis(s.Name(), float64(time.Since(start).Microseconds())/1000)

	summary, err := w.recorder.Record(ctx, model.NewMatchReport(sub, report, w.now()))
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("record report for %s: %w", sub.ID, err)
	}

	w.logger.Debug(ctx, "submission analyzed",
		logger.String("submission_id", sub.ID),
		logger.String("team", sub.Team),
		logger.String("match", sub.Match),
		logger.Int("score", report.Score.Total),
		logger.Float64("team_mean_score", summary.TotalScore.Mean),
	)
	return nil
}

// PoolStats reports how many submissions a pool has handled.
type PoolStats struct {
	Workers   int   `json:"workers"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// Pool manages multiple workers over a shared queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	counts  *counters
	logger  logger.Logger
}

// NewPool creates a new worker pool. workerCount < 1 picks a size from the
// number of CPUs. opts apply to every worker; names are assigned per worker.
func NewPool(workerCount int, q Queue, seasons Resolver, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		counts:  &counters{},
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{withCounters(pool.counts)}, opts...)
		workerOpts = append(workerOpts, WithName("worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(q, seasons, recorder, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stats returns the pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:   len(p.workers),
		Processed: p.counts.processed.Load(),
		Failed:    p.counts.failed.Load(),
	}
}

// Shutdown closes the queue and lets the workers drain it. Workers still
// busy when ctx (or the pool timeout) expires are stopped without draining.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			_ = w.Shutdown(context.Background())
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool drain: %w", shutdownCtx.Err())
	}
	return nil
}
