// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"runtime"

	"github.com/okian/fieldtrace/internal/adapters/http/api"
	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/dedupe"
)

// Config contains process configuration.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRankingLimit caps GET /rankings?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// MaxReportsPerTeam keeps only the latest reports per team; 0 keeps all.
	MaxReportsPerTeam int `koanf:"max_reports_per_team"`

	// MaxBodyBytes caps request bodies carrying a trace.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// Bins is the velocity histogram bin count.
	Bins int `koanf:"bins"`

	// SeasonYear pins the default season; 0 picks the latest registered.
	SeasonYear int `koanf:"season_year"`

	// SeasonFiles lists extra season definitions (YAML) to register.
	SeasonFiles []string `koanf:"season_files"`

	// ShutdownTimeoutSec bounds graceful shutdown.
	ShutdownTimeoutSec int `koanf:"shutdown_timeout_sec"`
}

// New creates a Config populated with defaults. Context is accepted first
// to satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		Addr:               ":9080",
		LogLevel:           "info",
		LogFormat:          "text",
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU() * 2,
		DedupeSize:         dedupe.DefaultMaxSize,
		MaxRankingLimit:    api.DefaultMaxLimit,
		MaxBodyBytes:       api.DefaultMaxBodyBytes,
		Bins:               analysis.DefaultBins,
		ShutdownTimeoutSec: 15,
	}
}
