// Package repository holds analyzed match reports and ranks teams by them.
package repository

import (
	"context"

	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/model"
	"github.com/okian/fieldtrace/internal/domain/types"
)

// Store provides read/write access to the ranking state.
type Store interface {
	// Record adds a match report. A second report for the same team and
	// match replaces the first. Returns the team's updated summary.
	Record(ctx context.Context, report model.MatchReport) (analysis.TeamSummary, error)

	// Team returns the team's rank, summary and reports.
	// Returns ErrNotFound if the team is unknown.
	Team(ctx context.Context, team string) (types.TeamView, error)

	// TopN returns the top-N teams ordered by mean total score desc.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of ranked teams.
	Count(ctx context.Context) int

	// Reports returns the number of stored match reports.
	Reports(ctx context.Context) int
}
