package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithMaxReportsPerTeam keeps only the most recent n reports per team.
// n <= 0 keeps every report.
func WithMaxReportsPerTeam(n int) Option {
	return func(s *TreapStore) {
		s.maxReports = n
	}
}

// WithSeed fixes the priority sequence so tree shape is reproducible.
func WithSeed(seed uint64) Option {
	return func(s *TreapStore) {
		s.seed = seed
	}
}
