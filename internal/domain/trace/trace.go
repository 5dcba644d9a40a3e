package trace

import (
	"fmt"
	"maps"
)

// Trace is a validated dense trace: exactly grid.Size points with indices
// 0..Size-1. Points are copied in on construction and out on access, so a
// Trace never aliases caller memory.
type Trace struct {
	grid   Grid
	points []TimePoint
}

// New wraps an already dense point slice. It fails with *ValidationError if
// the slice is not exactly grid.Size contiguous, in-range points.
func New(grid Grid, points []TimePoint) (*Trace, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if len(points) != grid.Size {
		return nil, &ValidationError{Field: "trace.length", Expected: fmt.Sprintf("exactly %d points", grid.Size), Got: len(points)}
	}
	for i, p := range points {
		if p.Index != i {
			return nil, &ValidationError{Field: fmt.Sprintf("trace[%d].index", i), Expected: fmt.Sprintf("%d (contiguous)", i), Got: p.Index}
		}
		if err := validatePoint(p, grid.Size); err != nil {
			return nil, err
		}
	}

	grid.Sections = maps.Clone(grid.Sections)
	owned := make([]TimePoint, len(points))
	copy(owned, points)
	return &Trace{grid: grid, points: owned}, nil
}

// FromSparse expands a sparse trace onto the grid and validates the result.
func FromSparse(grid Grid, sparse []TimePoint) (*Trace, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return New(grid, Expand(sparse, grid))
}

// Grid returns the grid the trace conforms to.
func (t *Trace) Grid() Grid {
	g := t.grid
	g.Sections = maps.Clone(t.grid.Sections)
	return g
}

// Len returns the number of samples, always Grid().Size.
func (t *Trace) Len() int { return len(t.points) }

// At returns the sample at index i.
func (t *Trace) At(i int) TimePoint { return t.points[i] }

// Points returns a copy of every sample in index order.
func (t *Trace) Points() []TimePoint {
	out := make([]TimePoint, len(t.points))
	copy(out, t.points)
	return out
}

// Sparse returns the compacted form of the trace.
func (t *Trace) Sparse() []TimePoint { return Compact(t.points) }
