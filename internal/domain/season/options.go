package season

// Option configures a Registry.
type Option func(*registryConfig)

type registryConfig struct {
	seasons     []Season
	defaultYear int
}

// WithSeasons registers the given seasons at construction.
func WithSeasons(seasons ...Season) Option {
	return func(c *registryConfig) {
		c.seasons = append(c.seasons, seasons...)
	}
}

// WithDefaultYear pins the default season.
func WithDefaultYear(year int) Option {
	return func(c *registryConfig) {
		c.defaultYear = year
	}
}
