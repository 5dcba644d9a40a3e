package main

import (
	"context"
	"fmt"

	"github.com/okian/fieldtrace/internal/loadgen"
	"github.com/okian/fieldtrace/pkg/logger"
)

func runLoadgen(ctx context.Context, e env, args []string) error {
	fs := newFlagSet("loadgen", e)
	var sf seasonFlags
	sf.register(fs)
	cfg := loadgen.DefaultConfig()
	fs.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the service")
	fs.IntVar(&cfg.Submissions, "submissions", cfg.Submissions, "Number of traces to submit")
	fs.IntVar(&cfg.Teams, "teams", cfg.Teams, "Number of teams to spread traces over")
	fs.IntVar(&cfg.TopN, "top", cfg.TopN, "Number of ranking entries to verify")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent submitters")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	fs.DurationVar(&cfg.Settle, "settle", cfg.Settle, "How long to wait for the queue to drain (0 skips)")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Generator seed")
	fs.BoolVar(&cfg.Compressed, "compressed", cfg.Compressed, "Send compressed envelopes")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Log every ranking entry")
	format := fs.String("log-format", logger.FormatText, "Log format: text or json")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	s, err := sf.resolve()
	if err != nil {
		return err
	}
	cfg.Season = sf.year
	if err := logger.Init(logger.WithFormat(*format), logger.WithOutput(e.stderr)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	cfg.Logger = logger.Named("loadgen")

	stats, err := loadgen.Run(ctx, cfg, s)
	if stats != nil {
		fmt.Fprintf(e.stdout, "submitted=%d accepted=%d duplicate=%d rejected=%d failed=%d ranked=%d duration=%s\n",
			stats.Submitted, stats.Accepted, stats.Duplicate, stats.Rejected, stats.Failed, stats.Rankings, stats.Duration)
	}
	return err
}
