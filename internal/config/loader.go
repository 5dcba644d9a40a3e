package config

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/fieldtrace/internal/domain/analysis"
)

// Environment variable names.
const (
	EnvPrefix     = "FIELDTRACE_"
	EnvConfigFile = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if FIELDTRACE_CONFIG is set
//  3. env (prefix FIELDTRACE_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// FIELDTRACE_QUEUE_SIZE -> queue_size. Underscores are kept so keys
	// match the flat koanf tags; list values are comma separated.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if key == "season_files" {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var (
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"text", "json"}
)

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains(logLevels, strings.ToLower(c.LogLevel)):
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	case !slices.Contains(logFormats, strings.ToLower(c.LogFormat)):
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be >= 1", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be >= 1", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must be >= 0", ErrInvalidConfig)
	case c.MaxRankingLimit < 1:
		return fmt.Errorf("%w: max_ranking_limit must be >= 1", ErrInvalidConfig)
	case c.MaxReportsPerTeam < 0:
		return fmt.Errorf("%w: max_reports_per_team must be >= 0", ErrInvalidConfig)
	case c.MaxBodyBytes < 1:
		return fmt.Errorf("%w: max_body_bytes must be >= 1", ErrInvalidConfig)
	case c.Bins < 1 || c.Bins > analysis.MaxBins:
		return fmt.Errorf("%w: bins must be in [1, %d]", ErrInvalidConfig, analysis.MaxBins)
	case c.SeasonYear < 0:
		return fmt.Errorf("%w: season_year must be >= 0", ErrInvalidConfig)
	case c.ShutdownTimeoutSec < 1:
		return fmt.Errorf("%w: shutdown_timeout_sec must be >= 1", ErrInvalidConfig)
	}
	return nil
}
