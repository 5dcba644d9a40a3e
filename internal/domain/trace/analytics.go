package trace

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultStationaryThreshold is the speed, in field units per second, below
// which a robot counts as not moving.
const DefaultStationaryThreshold = 0.1

// Histogram buckets a series into equal-width bins. Labels are bin midpoints.
type Histogram struct {
	Bins   []int     `json:"bins"`
	Labels []float64 `json:"labels"`
	Width  float64   `json:"width"`
}

// VelocitySeries returns the speed between each adjacent pair of samples in
// physical units per second. The result has Len()-1 entries and is computed
// fresh on every call.
func (t *Trace) VelocitySeries() []float64 {
	if len(t.points) < 2 {
		return []float64{}
	}
	out := make([]float64, len(t.points)-1)
	for i := range out {
		out[i] = t.stepDistance(i) * t.grid.SampleRate
	}
	return out
}

// stepDistance is the physical distance between samples i and i+1.
func (t *Trace) stepDistance(i int) float64 {
	a, b := t.points[i], t.points[i+1]
	dx := (b.X - a.X) * t.grid.FieldWidth
	dy := (b.Y - a.Y) * t.grid.FieldHeight
	return math.Hypot(dx, dy)
}

// VelocityHistogram buckets VelocitySeries into bins equal-width buckets.
func (t *Trace) VelocityHistogram(bins int) Histogram {
	return NewHistogram(t.VelocitySeries(), bins)
}

// MaxHistogramBins caps the bucket count of a histogram.
const MaxHistogramBins = 1000

// NewHistogram buckets values into bins buckets spanning [0, max(values)].
// The bucket width is max/bins, or 1 when max is 0. Values equal to max land
// in the last bucket. Empty input or bins < 1 yields empty slices; bins above
// MaxHistogramBins is capped.
func NewHistogram(values []float64, bins int) Histogram {
	if len(values) == 0 || bins < 1 {
		return Histogram{Bins: []int{}, Labels: []float64{}}
	}
	bins = min(bins, MaxHistogramBins)
	maxV := floats.Max(values)
	width := maxV / float64(bins)
	if maxV <= 0 {
		width = 1
	}

	h := Histogram{Bins: make([]int, bins), Labels: make([]float64, bins), Width: width}
	for _, v := range values {
		b := int(math.Floor(v / width))
		if b < 0 {
			b = 0
		}
		if b >= bins {
			b = bins - 1
		}
		h.Bins[b]++
	}
	for i := range h.Labels {
		h.Labels[i] = (float64(i) + 0.5) * width
	}
	return h
}

// AverageVelocity is the mean of VelocitySeries; NaN for a single-sample trace.
func (t *Trace) AverageVelocity() float64 {
	series := t.VelocitySeries()
	if len(series) == 0 {
		return math.NaN()
	}
	return stat.Mean(series, nil)
}

// MaxVelocity is the peak of VelocitySeries; 0 for a single-sample trace.
func (t *Trace) MaxVelocity() float64 {
	series := t.VelocitySeries()
	if len(series) == 0 {
		return 0
	}
	return floats.Max(series)
}

// DistanceTravelled sums the physical distance between adjacent samples.
func (t *Trace) DistanceTravelled() float64 {
	total := 0.0
	for i := 0; i+1 < len(t.points); i++ {
		total += t.stepDistance(i)
	}
	return total
}

// SecondsNotMoving counts samples slower than threshold and converts the
// count to seconds. Slow movement counts, not just zero movement.
func (t *Trace) SecondsNotMoving(threshold float64) float64 {
	n := 0
	for _, v := range t.VelocitySeries() {
		if v < threshold {
			n++
		}
	}
	return float64(n) / t.grid.SampleRate
}

// FilterByAction returns every sample carrying code, in order.
func (t *Trace) FilterByAction(code Action) []TimePoint {
	out := []TimePoint{}
	for _, p := range t.points {
		if p.Action == code {
			out = append(out, p)
		}
	}
	return out
}

// ActionCounts tallies every non-empty action in the trace.
func (t *Trace) ActionCounts() map[Action]int {
	counts := make(map[Action]int)
	for _, p := range t.points {
		if p.HasAction() {
			counts[p.Action]++
		}
	}
	return counts
}

// Section returns the contiguous samples of a match phase. Unknown names
// yield an empty slice.
func (t *Trace) Section(name string) []TimePoint {
	from, to, ok := t.grid.SectionBounds(name)
	if !ok || from >= to {
		return []TimePoint{}
	}
	out := make([]TimePoint, to-from)
	copy(out, t.points[from:to])
	return out
}
