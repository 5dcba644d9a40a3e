package worker

import (
	"time"

	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithBins sets the velocity histogram bin count used in reports. Values
// outside [1, analysis.MaxBins] are ignored.
func WithBins(bins int) Option {
	return func(w *InMemoryWorker) {
		if bins > 0 && bins <= analysis.MaxBins {
			w.bins = bins
		}
	}
}

// WithClock overrides the time source stamped on reports.
func WithClock(now func() time.Time) Option {
	return func(w *InMemoryWorker) {
		if now != nil {
			w.now = now
		}
	}
}

func withCounters(c *counters) Option {
	return func(w *InMemoryWorker) {
		w.counts = c
	}
}
