package trace

// Expand converts a sparse trace into a dense one covering every index of
// the grid. The first point seen for an index wins; indices outside the
// grid are dropped. Missing slots carry the position of the most recent
// earlier point ((0, 0) before the first one) and never an action.
//
// Compact relies on this forward-fill: it drops exactly the points Expand
// would synthesize, so changing the fill policy changes round-trip output.
func Expand(sparse []TimePoint, grid Grid) []TimePoint {
	size := grid.Size
	if size < 1 {
		return []TimePoint{}
	}
	if isDense(sparse, size) {
		out := make([]TimePoint, size)
		copy(out, sparse)
		return out
	}

	slots := make([]TimePoint, size)
	filled := make([]bool, size)
	collected := 0
	for _, p := range sparse {
		if collected == size {
			break
		}
		if p.Index < 0 || p.Index >= size || filled[p.Index] {
			continue
		}
		slots[p.Index] = p
		filled[p.Index] = true
		collected++
	}

	var x, y float64
	for i := range slots {
		if filled[i] {
			x, y = slots[i].X, slots[i].Y
			continue
		}
		slots[i] = TimePoint{Index: i, X: x, Y: y, Action: NoAction}
	}
	return slots
}

// Compact drops consecutive points that repeat the last emitted position
// without an action. The first point is always kept. Compact is idempotent.
func Compact(dense []TimePoint) []TimePoint {
	if len(dense) == 0 {
		return []TimePoint{}
	}
	out := make([]TimePoint, 0, len(dense)/4+1)
	last := dense[0]
	out = append(out, last)
	for _, p := range dense[1:] {
		if p.HasAction() || !p.SamePosition(last) {
			out = append(out, p)
			last = p
		}
	}
	return out
}

// isDense reports whether points holds exactly indices 0..size-1 in order.
func isDense(points []TimePoint, size int) bool {
	if len(points) != size {
		return false
	}
	for i, p := range points {
		if p.Index != i {
			return false
		}
	}
	return true
}
