// Package loadgen drives a running fieldtrace service with synthetic match
// traces and checks that the rankings it serves stay consistent.
package loadgen

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/fieldtrace/pkg/logger"
)

// Defaults for Config fields left at their zero value.
const (
	DefaultBaseURL     = "http://localhost:9080"
	DefaultSubmissions = 1000
	DefaultTeams       = 40
	DefaultTopN        = 25
	DefaultTimeout     = 30 * time.Second
	DefaultSettle      = 2 * time.Minute
	DefaultPoll        = 250 * time.Millisecond

	workerMultiplier = 2
	percentage       = 100
)

// ErrInvalidConfig is wrapped by every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid load generator configuration")

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Submissions int           // Number of traces to submit
	Teams       int           // Number of distinct teams the traces spread over
	Season      int           // Season year sent with each submission, 0 for the default
	TopN        int           // Number of ranking entries to fetch and verify
	Workers     int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	Settle      time.Duration // How long to wait for the queue to drain
	Poll        time.Duration // Interval between /stats polls while settling
	Seed        uint64        // Generator seed; runs with the same seed send the same traces
	Compressed  bool          // Send compressed envelopes instead of parsed tuples
	Verbose     bool          // Log every ranking entry

	Logger logger.Logger // Progress and results; nil discards
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Submissions: DefaultSubmissions,
		Teams:       DefaultTeams,
		TopN:        DefaultTopN,
		Workers:     runtime.NumCPU() * workerMultiplier,
		Timeout:     DefaultTimeout,
		Settle:      DefaultSettle,
		Poll:        DefaultPoll,
		Compressed:  true,
	}
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Submissions < 1:
		return fmt.Errorf("%w: submissions must be positive, got %d", ErrInvalidConfig, c.Submissions)
	case c.Teams < 1 || c.Teams > teamNumRange:
		return fmt.Errorf("%w: teams must be within [1, %d], got %d", ErrInvalidConfig, teamNumRange, c.Teams)
	case c.TopN < 1:
		return fmt.Errorf("%w: top must be positive, got %d", ErrInvalidConfig, c.TopN)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	case c.Poll <= 0:
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Accepted   int
	Duplicate  int
	Rejected   int // 429 backpressure
	Failed     int
	Processed  int // as reported by the service once settled
	Rankings   int
	TeamsRead  int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Violations []string
}

// SuccessRate is the accepted share of submitted traces, in percent.
func (s *Stats) SuccessRate() float64 {
	if s.Submitted == 0 {
		return 0
	}
	return float64(s.Accepted+s.Duplicate) / float64(s.Submitted) * percentage
}

// Throughput is submitted traces per second of run time.
func (s *Stats) Throughput() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Submitted) / s.Duration.Seconds()
}
