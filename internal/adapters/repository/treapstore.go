package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/model"
	"github.com/okian/fieldtrace/internal/domain/types"
	"github.com/okian/fieldtrace/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: mean total score DESC, then team ASC (deterministic). "less"
// means ranks earlier, so in-order traversal yields the rankings from best
// to worst. Node priorities are random, which keeps expected depth
// logarithmic regardless of insertion order.

// scoreScale controls fixed-point scaling from float64 (6 decimal places).
const scoreScale = 1_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	switch {
	case math.IsNaN(x):
		return 0
	case x*scoreScale >= math.MaxInt64:
		return scoreFP(math.MaxInt64)
	case x*scoreScale <= math.MinInt64:
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(x * scoreScale))
}

func toFloat(x scoreFP) float64 { return float64(x) / scoreScale }

// teamRecord is the per-team state behind a tree node.
type teamRecord struct {
	key     scoreFP
	summary analysis.TeamSummary
	reports []model.MatchReport
}

type node struct {
	team  string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aTeam) ranks before (bScore, bTeam).
func less(aScore scoreFP, aTeam string, bScore scoreFP, bTeam string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aTeam < bTeam
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, team string, score scoreFP, prio uint64) *node {
	if n == nil {
		return &node{team: team, score: score, prio: prio, size: 1}
	}
	if less(score, team, n.score, n.team) {
		n.left = insert(n.left, team, score, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, team, score, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, team string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && team == n.team:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, team, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, team, score)
		}
	case less(score, team, n.score, n.team):
		n.left = deleteNode(n.left, team, score)
	default:
		n.right = deleteNode(n.right, team, score)
	}
	fix(n)
	return n
}

// position returns the 0-based in-order position of (team, score).
func position(n *node, team string, score scoreFP) int {
	pos := 0
	for n != nil {
		switch {
		case score == n.score && team == n.team:
			return pos + nsize(n.left)
		case less(score, team, n.score, n.team):
			n = n.left
		default:
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return -1
}

// collectTopN appends up to limit nodes in rank order.
func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore ranks teams by the mean total score of their match reports.
type TreapStore struct {
	mu         sync.RWMutex
	root       *node
	byTeam     map[string]*teamRecord
	reports    int
	maxReports int
	seed       uint64
	rng        *rand.Rand
}

var _ Store = (*TreapStore)(nil)

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byTeam: make(map[string]*teamRecord),
		seed:   uint64(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	return s
}

// Record implements Store.Record in O(r + log n) expected time, where r is
// the number of reports the team already has.
func (s *TreapStore) Record(_ context.Context, report model.MatchReport) (analysis.TeamSummary, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency("record", float64(time.Since(start).Microseconds())/1000)
	}()

	if report.Team == "" {
		metrics.RecordErrorByComponent("repository", "invalid_report")
		return analysis.TeamSummary{}, fmt.Errorf("%w: empty team", ErrInvalidReport)
	}

	s.mu.Lock()
	rec, ok := s.byTeam[report.Team]
	if ok {
		s.root = deleteNode(s.root, report.Team, rec.key)
	} else {
		rec = &teamRecord{}
		s.byTeam[report.Team] = rec
	}

	replaced := false
	for i := range rec.reports {
		if rec.reports[i].Match == report.Match {
			rec.reports[i] = report
			replaced = true
			break
		}
	}
	if !replaced {
		rec.reports = append(rec.reports, report)
		s.reports++
		if s.maxReports > 0 && len(rec.reports) > s.maxReports {
			drop := len(rec.reports) - s.maxReports
			rec.reports = append(rec.reports[:0:0], rec.reports[drop:]...)
			s.reports -= drop
		}
	}

	rec.summary = summarize(report.Team, rec.reports)
	rec.key = toFixedPoint(rec.summary.TotalScore.Mean)
	s.root = insert(s.root, report.Team, rec.key, s.rng.Uint64())
	summary := rec.summary
	teams, reports := len(s.byTeam), s.reports
	s.mu.Unlock()

	metrics.RecordRankingUpdate()
	metrics.UpdateTeamsTotal(teams)
	metrics.UpdateReportsTotal(reports)
	return summary, nil
}

func summarize(team string, reports []model.MatchReport) analysis.TeamSummary {
	rs := make([]analysis.Report, len(reports))
	for i, r := range reports {
		rs[i] = r.Report
	}
	return analysis.Summarize(team, rs)
}

// Team returns the team's rank, summary and reports in O(r + log n).
func (s *TreapStore) Team(_ context.Context, team string) (types.TeamView, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency("team", float64(time.Since(start).Microseconds())/1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byTeam[team]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.TeamView{}, ErrNotFound
	}
	reports := make([]model.MatchReport, len(rec.reports))
	copy(reports, rec.reports)
	return types.TeamView{
		Rank:    s.rankOf(team, rec.key),
		Summary: rec.summary,
		Reports: reports,
	}, nil
}

// rankOf computes the dense rank of a team: one plus the number of distinct
// higher scores. Must be called with s.mu held.
func (s *TreapStore) rankOf(team string, key scoreFP) int {
	pos := position(s.root, team, key)
	if pos <= 0 {
		return 1
	}
	ahead := make([]*node, 0, pos)
	collectTopN(s.root, pos, &ahead)
	rank := 1
	for i := range ahead {
		if i > 0 && ahead[i].score == ahead[i-1].score {
			continue
		}
		if ahead[i].score != key {
			rank++
		}
	}
	return rank
}

// TopN returns the top n teams ordered by mean score desc.
func (s *TreapStore) TopN(_ context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency("top_n", float64(time.Since(start).Microseconds())/1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node, 0, min(n, len(s.byTeam)))
	collectTopN(s.root, n, &nodes)
	out := make([]types.Entry, len(nodes))
	for i, nd := range nodes {
		rec := s.byTeam[nd.team]
		out[i] = types.Entry{
			Team:            nd.team,
			MeanScore:       toFloat(nd.score),
			Matches:         rec.summary.Matches,
			AverageVelocity: rec.summary.AverageVelocity.Mean,
		}
	}
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the number of ranked teams.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byTeam)
}

// Reports returns the number of stored match reports.
func (s *TreapStore) Reports(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reports
}

// assignRanksWithTies gives equal scores the same rank; the next distinct
// score takes the next consecutive rank.
func assignRanksWithTies(entries []types.Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].MeanScore != entries[i-1].MeanScore {
			rank++
		}
		entries[i].Rank = rank
	}
}
