// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/fieldtrace/internal/adapters/mq/queue"
	"github.com/okian/fieldtrace/internal/adapters/mq/worker"
	"github.com/okian/fieldtrace/internal/adapters/repository"
	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/dedupe"
	"github.com/okian/fieldtrace/internal/domain/model"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/internal/domain/types"
	"github.com/okian/fieldtrace/pkg/logger"
)

const defaultStopTimeout = 10 * time.Second

// Service implements the API dependencies for the trace analytics system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *repository.TreapStore
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	seasons *season.Registry

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	maxReports  int
	bins        int

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		dedupeSize:  dedupe.DefaultMaxSize,
		bins:        analysis.DefaultBins,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.seasons == nil {
		reg, err := season.NewRegistry(season.WithSeasons(season.Builtin()...))
		if err != nil {
			return fmt.Errorf("build season registry: %w", err)
		}
		s.seasons = reg
	}
	def, err := s.seasons.Default()
	if err != nil {
		return fmt.Errorf("default season: %w", err)
	}

	s.logger.Info(ctx, "starting trace analytics service...")

	s.store = repository.NewTreapStore(repository.WithMaxReportsPerTeam(s.maxReports))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.seasons, s.store,
		worker.WithBins(s.bins),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "trace analytics service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("defaultSeason", def.Year()),
	)
	return nil
}

// Shutdown stops accepting submissions and drains the queue.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping trace analytics service...")

	err := s.pool.Shutdown(ctx)
	s.started = false
	if err != nil {
		return fmt.Errorf("shutdown worker pool: %w", err)
	}
	s.logger.Info(ctx, "trace analytics service stopped",
		logger.Int("teams", s.store.Count(ctx)),
		logger.Int("reports", s.store.Reports(ctx)),
	)
	return nil
}

// Stop shuts down with a default timeout.
func (s *Service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultStopTimeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil && s.logger != nil {
		s.logger.Error(ctx, "service shutdown", logger.Error(err))
	}
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// SeenAndRecord atomically checks if a submission id was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	if s.deduper == nil {
		return false
	}
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a submission id from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	if s.deduper != nil {
		s.deduper.Unrecord(ctx, id)
	}
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a parsed trace for asynchronous analysis.
func (s *Service) Enqueue(ctx context.Context, sub model.Submission) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	if !s.running() {
		return false
	}
	ok := s.queue.Enqueue(ctx, sub)
	if ok {
		s.logger.Debug(ctx, "enqueued submission",
			logger.String("submission_id", sub.ID),
			logger.String("team", sub.Team),
			logger.String("match", sub.Match),
		)
	}
	return ok
}

// Resolve returns the season for year; 0 selects the default.
func (s *Service) Resolve(year int) (season.Season, error) {
	if s.seasons == nil {
		return nil, ErrNotStarted
	}
	return s.seasons.Resolve(year)
}

// Seasons lists the registered seasons by year.
func (s *Service) Seasons() []season.Season {
	if s.seasons == nil {
		return nil
	}
	years := s.seasons.Years()
	out := make([]season.Season, 0, len(years))
	for _, y := range years {
		if ss, err := s.seasons.Get(y); err == nil {
			out = append(out, ss)
		}
	}
	return out
}

// TopN returns the top N ranked teams.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store.TopN(ctx, n)
}

// Team returns the rank, summary and reports of a team.
func (s *Service) Team(ctx context.Context, team string) (types.TeamView, error) {
	if s.store == nil {
		return types.TeamView{}, ErrNotStarted
	}
	return s.store.Team(ctx, team)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.seasons != nil {
		stats["seasons"] = s.seasons.Years()
	}
	if s.store != nil {
		stats["teams"] = s.store.Count(ctx)
		stats["reports"] = s.store.Reports(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		ps := s.pool.Stats()
		stats["processed"] = ps.Processed
		stats["failed"] = ps.Failed
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	return stats
}
