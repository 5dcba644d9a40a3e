package analysis

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes one metric across matches. Median is the lower empirical
// median; StdDev is the sample standard deviation and 0 for one match.
type Stats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stddev"`
}

// TeamSummary aggregates the reports of one team.
type TeamSummary struct {
	Team                 string  `json:"team"`
	Matches              int     `json:"matches"`
	AverageVelocity      Stats   `json:"average_velocity"`
	TotalScore           Stats   `json:"total_score"`
	MeanSecondsNotMoving float64 `json:"mean_seconds_not_moving"`
	MeanDistance         float64 `json:"mean_distance"`
}

// Summarize aggregates reports for team. No reports yields a zero summary.
func Summarize(team string, reports []Report) TeamSummary {
	sum := TeamSummary{Team: team, Matches: len(reports)}
	if len(reports) == 0 {
		return sum
	}
	velocity := make([]float64, len(reports))
	score := make([]float64, len(reports))
	idle := make([]float64, len(reports))
	distance := make([]float64, len(reports))
	for i, r := range reports {
		velocity[i] = r.AverageVelocity
		score[i] = float64(r.Score.Total)
		idle[i] = r.SecondsNotMoving
		distance[i] = r.DistanceTravelled
	}
	sum.AverageVelocity = describe(velocity)
	sum.TotalScore = describe(score)
	sum.MeanSecondsNotMoving = stat.Mean(idle, nil)
	sum.MeanDistance = stat.Mean(distance, nil)
	return sum
}

func describe(x []float64) Stats {
	if len(x) == 0 {
		return Stats{}
	}
	sorted := slices.Clone(x)
	slices.Sort(sorted)
	s := Stats{
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	return s
}
