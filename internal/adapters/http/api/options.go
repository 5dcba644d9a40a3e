package api

import "github.com/okian/fieldtrace/internal/domain/analysis"

// Default handler limits.
const (
	DefaultMaxLimit     = 100
	DefaultLimit        = 10
	DefaultMaxBodyBytes = 1 << 20
)

// Option configures a Server.
type Option func(*Server)

// WithMaxLimit caps the rankings limit query parameter.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithMaxBodyBytes caps request bodies that carry a trace.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithBins sets the default histogram bin count for POST /analyze. Values
// outside [1, analysis.MaxBins] are ignored.
func WithBins(n int) Option {
	return func(s *Server) {
		if n > 0 && n <= analysis.MaxBins {
			s.bins = n
		}
	}
}
