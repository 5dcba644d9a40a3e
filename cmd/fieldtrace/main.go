// Command fieldtrace serves the trace analytics HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fieldtrace/internal/adapters/http/api"
	app "github.com/okian/fieldtrace/internal/app"
	"github.com/okian/fieldtrace/internal/config"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/pkg/logger"
	"github.com/okian/fieldtrace/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// The logger may not exist yet.
		os.Stderr.WriteString("fieldtrace: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	seasons, err := loadSeasons(cfg)
	if err != nil {
		return err
	}
	log.Info(ctx, "seasons loaded", logger.Any("years", seasons.Years()))

	metrics.RegisterRuntimeCollectors()

	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxReportsPerTeam(cfg.MaxReportsPerTeam),
		app.WithBins(cfg.Bins),
		app.WithSeasons(seasons),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	srv := newHTTPServer(ctx, cfg, svc)
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		svc.Stop()
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		startServiceMetricsUpdater(gctx, svc)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
		defer cancel()
		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
		if err := svc.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("service shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	log.Info(context.Background(), "server stopped")
	return err
}

// loadSeasons registers the built-in seasons plus every configured season
// file and pins the default year when one is set.
func loadSeasons(cfg *config.Config) (*season.Registry, error) {
	all := season.Builtin()
	for _, path := range cfg.SeasonFiles {
		b, err := season.LoadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, b)
	}
	opts := []season.Option{season.WithSeasons(all...)}
	if cfg.SeasonYear != 0 {
		opts = append(opts, season.WithDefaultYear(cfg.SeasonYear))
	}
	reg, err := season.NewRegistry(opts...)
	if err != nil {
		return nil, fmt.Errorf("build season registry: %w", err)
	}
	return reg, nil
}

func newHTTPServer(ctx context.Context, cfg *config.Config, svc *app.Service) *http.Server {
	mux := http.NewServeMux()
	api.NewServer(svc, svc,
		api.WithMaxLimit(cfg.MaxRankingLimit),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithBins(cfg.Bins),
	).Register(ctx, mux)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startServiceMetricsUpdater refreshes gauges derived from service stats
// until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if n, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(n)
	}
	if n, ok := stats["teams"].(int); ok {
		metrics.UpdateTeamsTotal(n)
	}
	if n, ok := stats["reports"].(int); ok {
		metrics.UpdateReportsTotal(n)
	}
	if n, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(n)
	}
}
