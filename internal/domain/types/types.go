// Package types contains common read shapes shared by the store and the API.
package types

import (
	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/model"
)

// Entry represents a team's position in the rankings.
type Entry struct {
	Rank            int     `json:"rank"`
	Team            string  `json:"team"`
	MeanScore       float64 `json:"mean_score"`
	Matches         int     `json:"matches"`
	AverageVelocity float64 `json:"average_velocity"`
}

// TeamView is everything the store knows about one team.
type TeamView struct {
	Rank    int                  `json:"rank"`
	Summary analysis.TeamSummary `json:"summary"`
	Reports []model.MatchReport  `json:"reports"`
}
