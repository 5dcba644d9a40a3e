// Package analysis turns a trace and its season into a per-match report and
// aggregates reports into per-team summaries.
package analysis

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/internal/domain/trace"
)

// Default analysis constants.
const (
	DefaultBins = 10
	// MaxBins is the largest accepted velocity histogram bin count.
	MaxBins = trace.MaxHistogramBins
)

// SpeedPercentiles are empirical percentiles of a velocity series.
type SpeedPercentiles struct {
	P50 float64 `json:"p50"`
	P85 float64 `json:"p85"`
	P95 float64 `json:"p95"`
}

// Report is everything derived from one match trace.
type Report struct {
	Season            int                  `json:"season"`
	Samples           int                  `json:"samples"`
	AverageVelocity   float64              `json:"average_velocity"`
	MaxVelocity       float64              `json:"max_velocity"`
	Percentiles       SpeedPercentiles     `json:"percentiles"`
	SecondsNotMoving  float64              `json:"seconds_not_moving"`
	DistanceTravelled float64              `json:"distance_travelled"`
	Histogram         trace.Histogram      `json:"histogram"`
	Alliance          season.Alliance      `json:"alliance"`
	Score             season.Score         `json:"score"`
	Occupancy         map[string]float64   `json:"occupancy"`
	Actions           map[trace.Action]int `json:"actions"`
}

// Analyze computes a Report. bins < 1 falls back to DefaultBins. A trace
// too short to have a velocity reports an average of 0 so the report stays
// JSON encodable.
func Analyze(t *trace.Trace, s season.Season, bins int) Report {
	if bins < 1 {
		bins = DefaultBins
	}
	series := t.VelocitySeries()
	avg := t.AverageVelocity()
	if math.IsNaN(avg) {
		avg = 0
	}
	return Report{
		Season:            s.Year(),
		Samples:           t.Len(),
		AverageVelocity:   avg,
		MaxVelocity:       t.MaxVelocity(),
		Percentiles:       percentiles(series),
		SecondsNotMoving:  t.SecondsNotMoving(trace.DefaultStationaryThreshold),
		DistanceTravelled: t.DistanceTravelled(),
		Histogram:         trace.NewHistogram(series, bins),
		Alliance:          s.Alliance(t),
		Score:             s.Score(t),
		Occupancy:         s.Occupancy(t),
		Actions:           t.ActionCounts(),
	}
}

func percentiles(series []float64) SpeedPercentiles {
	if len(series) == 0 {
		return SpeedPercentiles{}
	}
	sorted := slices.Clone(series)
	slices.Sort(sorted)
	return SpeedPercentiles{
		P50: stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P85: stat.Quantile(0.85, stat.Empirical, sorted, nil),
		P95: stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
}
