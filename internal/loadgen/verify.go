package loadgen

import (
	"fmt"
	"math"

	"github.com/okian/fieldtrace/internal/domain/types"
)

// scoreTolerance absorbs the store's fixed-point rounding of mean scores.
const scoreTolerance = 1e-6

// verifyRankings checks ordering and dense ranking of a rankings page.
func verifyRankings(entries []types.Entry, limit int) []string {
	var out []string
	if len(entries) > limit {
		out = append(out, fmt.Sprintf("rankings returned %d entries for limit %d", len(entries), limit))
	}
	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		if j, dup := seen[e.Team]; dup {
			out = append(out, fmt.Sprintf("team %s listed at positions %d and %d", e.Team, j, i))
		}
		seen[e.Team] = i

		if i == 0 {
			if e.Rank != 1 {
				out = append(out, fmt.Sprintf("first entry %s has rank %d", e.Team, e.Rank))
			}
			continue
		}
		prev := entries[i-1]
		switch {
		case e.MeanScore > prev.MeanScore:
			out = append(out, fmt.Sprintf("team %s (%.3f) ranked below %s (%.3f)", e.Team, e.MeanScore, prev.Team, prev.MeanScore))
		case e.MeanScore == prev.MeanScore:
			if e.Rank != prev.Rank {
				out = append(out, fmt.Sprintf("tied teams %s and %s have ranks %d and %d", prev.Team, e.Team, prev.Rank, e.Rank))
			}
			if e.Team < prev.Team {
				out = append(out, fmt.Sprintf("tied teams %s and %s out of order", prev.Team, e.Team))
			}
		case e.Rank != prev.Rank+1:
			out = append(out, fmt.Sprintf("team %s has rank %d after rank %d", e.Team, e.Rank, prev.Rank))
		}
	}
	return out
}

// verifyTeam checks that a team view agrees with its rankings entry.
func verifyTeam(e types.Entry, v types.TeamView) []string {
	var out []string
	if v.Rank != e.Rank {
		out = append(out, fmt.Sprintf("team %s: view rank %d, rankings rank %d", e.Team, v.Rank, e.Rank))
	}
	if math.Abs(v.Summary.TotalScore.Mean-e.MeanScore) > scoreTolerance {
		out = append(out, fmt.Sprintf("team %s: view mean %.6f, rankings mean %.6f", e.Team, v.Summary.TotalScore.Mean, e.MeanScore))
	}
	if v.Summary.Matches != e.Matches || len(v.Reports) != e.Matches {
		out = append(out, fmt.Sprintf("team %s: %d matches ranked, summary %d, reports %d", e.Team, e.Matches, v.Summary.Matches, len(v.Reports)))
	}
	return out
}
