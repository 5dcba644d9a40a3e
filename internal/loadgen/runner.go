package loadgen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fieldtrace/internal/adapters/http/api"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/internal/domain/types"
	"github.com/okian/fieldtrace/pkg/logger"
)

// ErrInconsistent is returned when verification finds violations. The
// violations themselves are in Stats.Violations.
var ErrInconsistent = errors.New("rankings are inconsistent")

// Run executes a complete load run against cfg.BaseURL using traces for s.
// The returned Stats are populated even when an error is returned after
// submission started.
func Run(ctx context.Context, cfg Config, s season.Season) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	stats := &Stats{StartTime: time.Now()}
	defer func() {
		if stats.EndTime.IsZero() {
			stats.EndTime = time.Now()
			stats.Duration = stats.EndTime.Sub(stats.StartTime)
		}
	}()

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("submissions", cfg.Submissions),
		logger.Int("teams", cfg.Teams),
		logger.Int("workers", cfg.Workers),
		logger.Int("season", s.Year()),
		logger.Duration("timeout", cfg.Timeout))

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	baseline, err := client.Stats(ctx)
	if err != nil {
		return stats, fmt.Errorf("read baseline stats: %w", err)
	}

	// Step 2: generate
	subs, err := NewGenerator(s, cfg).Generate(ctx, cfg.Submissions)
	if err != nil {
		return stats, fmt.Errorf("trace generation failed: %w", err)
	}
	stats.Generated = len(subs)
	log.Info(ctx, "generated submissions", logger.Int("count", len(subs)))

	// Step 3: submit
	if err := submit(ctx, log, client, cfg.Workers, subs, stats); err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}

	// Step 4: wait for the workers to drain the queue
	target := statInt(baseline, "processed") + statInt(baseline, "failed") + stats.Accepted
	if err := settle(ctx, client, cfg, target, stats); err != nil {
		log.Warn(ctx, "queue did not drain before the settle deadline", logger.Error(err))
	}

	// Step 5: rankings and team views
	entries, err := client.Rankings(ctx, cfg.TopN)
	if err != nil {
		return stats, fmt.Errorf("ranking retrieval failed: %w", err)
	}
	stats.Rankings = len(entries)
	stats.Violations = append(stats.Violations, verifyRankings(entries, cfg.TopN)...)

	views, err := fetchTeams(ctx, client, cfg.Workers, entries)
	if err != nil {
		return stats, fmt.Errorf("team retrieval failed: %w", err)
	}
	stats.TeamsRead = len(views)
	for i, e := range entries {
		stats.Violations = append(stats.Violations, verifyTeam(e, views[i])...)
	}

	displayRankings(ctx, log, entries, cfg.Verbose)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if len(stats.Violations) > 0 {
		for _, v := range stats.Violations {
			log.Error(ctx, "verification failed", logger.String("violation", v))
		}
		return stats, fmt.Errorf("%w: %d violations", ErrInconsistent, len(stats.Violations))
	}
	log.Info(ctx, "load run completed")
	return stats, nil
}

// submit posts every submission with at most workers in flight. Transport
// failures are counted, not fatal; only context cancellation aborts.
func submit(ctx context.Context, log logger.Logger, client *Client, workers int, subs []api.SubmitRequest, stats *Stats) error {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, sub := range subs {
		g.Go(func() error {
			outcome, err := client.Submit(gctx, sub)
			if gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			stats.Submitted++
			switch {
			case err != nil:
				stats.Failed++
				log.Debug(gctx, "submission failed",
					logger.String("submissionID", sub.SubmissionID), logger.Error(err))
			case outcome == OutcomeDuplicate:
				stats.Duplicate++
			case outcome == OutcomeRejected:
				stats.Rejected++
			default:
				stats.Accepted++
			}
			return nil
		})
	}
	return g.Wait()
}

// settle polls /stats until the service has finished target submissions
// in total or cfg.Settle elapses.
func settle(ctx context.Context, client *Client, cfg Config, target int, stats *Stats) error {
	if cfg.Settle <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Settle)
	defer cancel()
	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	for {
		s, err := client.Stats(ctx)
		if err == nil {
			done := statInt(s, "processed") + statInt(s, "failed")
			stats.Processed = done
			if done >= target {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("settle: %d of %d finished: %w", stats.Processed, target, ctx.Err())
		case <-ticker.C:
		}
	}
}

func fetchTeams(ctx context.Context, client *Client, workers int, entries []types.Entry) ([]types.TeamView, error) {
	views := make([]types.TeamView, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range entries {
		g.Go(func() error {
			v, err := client.Team(gctx, e.Team)
			if err != nil {
				return fmt.Errorf("team %s: %w", e.Team, err)
			}
			views[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// statInt reads a numeric /stats field. JSON numbers decode as float64.
func statInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func displayRankings(ctx context.Context, log logger.Logger, entries []types.Entry, verbose bool) {
	if len(entries) == 0 {
		log.Warn(ctx, "no teams ranked")
		return
	}
	top := entries[0]
	log.Info(ctx, "top team",
		logger.String("team", top.Team),
		logger.Float64("meanScore", top.MeanScore),
		logger.Int("matches", top.Matches))
	if !verbose {
		return
	}
	for _, e := range entries {
		log.Info(ctx, "ranking",
			logger.Int("rank", e.Rank),
			logger.String("team", e.Team),
			logger.Float64("meanScore", e.MeanScore),
			logger.Float64("averageVelocity", e.AverageVelocity),
			logger.Int("matches", e.Matches))
	}
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("processed", stats.Processed),
		logger.Int("rankings", stats.Rankings),
		logger.Int("teamsRead", stats.TeamsRead),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", stats.SuccessRate()),
		logger.Float64("submissionsPerSecond", stats.Throughput()))
}
