package service

import (
	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued submissions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxReportsPerTeam keeps only the most recent n reports per team.
func WithMaxReportsPerTeam(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxReports = n
		}
	}
}

// WithBins sets the velocity histogram bin count for queued analyses.
func WithBins(bins int) Option {
	return func(s *Service) {
		if bins > 0 && bins <= analysis.MaxBins {
			s.bins = bins
		}
	}
}

// WithSeasons replaces the built-in season registry.
func WithSeasons(reg *season.Registry) Option {
	return func(s *Service) {
		if reg != nil {
			s.seasons = reg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

