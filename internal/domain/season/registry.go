package season

import (
	"fmt"
	"slices"
	"sync"
)

// Registry maps season years to their rules. It is built at startup and
// passed to whatever needs it; there is no package-level instance.
type Registry struct {
	mu          sync.RWMutex
	seasons     map[int]Season
	defaultYear int
}

// NewRegistry builds a registry from options. Without WithDefaultYear the
// most recent registered year is the default.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{seasons: make(map[int]Season)}
	cfg := registryConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, s := range cfg.seasons {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	if cfg.defaultYear != 0 {
		if err := r.SetDefault(cfg.defaultYear); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds s. Registering the same year twice fails.
func (r *Registry) Register(s Season) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seasons[s.Year()]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateSeason, s.Year())
	}
	r.seasons[s.Year()] = s
	return nil
}

// SetDefault pins the season returned by Default.
func (r *Registry) SetDefault(year int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seasons[year]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSeason, year)
	}
	r.defaultYear = year
	return nil
}

// Get returns the season registered for year.
func (r *Registry) Get(year int) (Season, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.seasons[year]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeason, year)
	}
	return s, nil
}

// Default returns the pinned season, or the latest one when none is pinned.
func (r *Registry) Default() (Season, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.seasons) == 0 {
		return nil, ErrNoSeasons
	}
	if r.defaultYear != 0 {
		return r.seasons[r.defaultYear], nil
	}
	latest := 0
	for y := range r.seasons {
		latest = max(latest, y)
	}
	return r.seasons[latest], nil
}

// Resolve returns Get(year), or Default when year is 0.
func (r *Registry) Resolve(year int) (Season, error) {
	if year == 0 {
		return r.Default()
	}
	return r.Get(year)
}

// Years lists registered years in ascending order.
func (r *Registry) Years() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, 0, len(r.seasons))
	for y := range r.seasons {
		out = append(out, y)
	}
	slices.Sort(out)
	return out
}
