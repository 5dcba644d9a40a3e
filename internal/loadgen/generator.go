package loadgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/fieldtrace/internal/adapters/http/api"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/internal/domain/trace"
)

// Ranges for synthetic robot motion, in normalized field units.
const (
	minStep       = 4    // slots between waypoints
	maxStep       = 24   // slots between waypoints
	maxDrift      = 0.08 // per waypoint, each axis
	actionChance  = 0.25
	stillChance   = 0.15
	wingDepth     = 0.25
	wingMargin    = 0.05
	firstTeamNum  = 1
	teamNumRange  = 9999
	matchPrefix   = "qm"
	idNamespace   = "fieldtrace.loadgen"
	goldenPCGSalt = 0x9e3779b97f4a7c15
)

// Generator builds synthetic submissions for one season. Identical seeds
// produce identical submissions, ids included. A Generator is not safe for
// concurrent use.
type Generator struct {
	grid       trace.Grid
	actions    []trace.Action
	teams      []string
	seed       uint64
	rng        *rand.Rand
	year       int
	compressed bool
	namespace  uuid.UUID
}

// NewGenerator returns a generator drawing from s's grid and action codes.
func NewGenerator(s season.Season, cfg Config) *Generator {
	g := &Generator{
		grid:       s.Grid(),
		seed:       cfg.Seed,
		rng:        rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^goldenPCGSalt)),
		year:       cfg.Season,
		compressed: cfg.Compressed,
		namespace:  uuid.NewSHA1(uuid.NameSpaceOID, []byte(idNamespace)),
	}
	for _, a := range s.Actions() {
		g.actions = append(g.actions, a.Code)
	}
	g.teams = g.pickTeams(max(cfg.Teams, 1))
	return g
}

// Teams returns the team numbers submissions are spread over.
func (g *Generator) Teams() []string {
	return append([]string(nil), g.teams...)
}

func (g *Generator) pickTeams(n int) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		team := strconv.Itoa(firstTeamNum + g.rng.IntN(teamNumRange))
		if _, dup := seen[team]; dup {
			continue
		}
		seen[team] = struct{}{}
		out = append(out, team)
	}
	return out
}

// Generate creates n submissions. Submission i goes to team i mod Teams in
// qualification match i/Teams+1, so every team plays the same number of
// matches give or take one.
func (g *Generator) Generate(ctx context.Context, n int) ([]api.SubmitRequest, error) {
	out := make([]api.SubmitRequest, 0, n)
	for i := range n {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled after %d submissions: %w", i, err)
		}
		req, err := g.Submission(i)
		if err != nil {
			return nil, fmt.Errorf("submission %d: %w", i, err)
		}
		out = append(out, req)
	}
	return out, nil
}

// Submission builds the i-th submission.
func (g *Generator) Submission(i int) (api.SubmitRequest, error) {
	team := g.teams[i%len(g.teams)]
	match := matchPrefix + strconv.Itoa(i/len(g.teams)+1)

	t, err := g.Trace()
	if err != nil {
		return api.SubmitRequest{}, err
	}
	body, err := t.Serialize(g.compressed)
	if err != nil {
		return api.SubmitRequest{}, err
	}
	key := strconv.FormatUint(g.seed, 10) + "/" + team + "/" + match
	return api.SubmitRequest{
		SubmissionID: uuid.NewSHA1(g.namespace, []byte(key)).String(),
		Team:         team,
		Match:        match,
		Season:       g.year,
		Trace:        api.TracePayload(body),
	}, nil
}

// Trace builds a random walk that starts in one alliance wing and
// occasionally scores.
func (g *Generator) Trace() (*trace.Trace, error) {
	size := g.grid.Size
	x := wingMargin + g.rng.Float64()*wingDepth
	if g.rng.IntN(2) == 1 {
		x = 1 - x
	}
	y := g.rng.Float64()

	sparse := make([]trace.TimePoint, 0, size/minStep+1)
	for idx := 0; idx < size; idx += minStep + g.rng.IntN(maxStep-minStep+1) {
		if idx > 0 && g.rng.Float64() >= stillChance {
			x = clamp(x + (g.rng.Float64()*2-1)*maxDrift)
			y = clamp(y + (g.rng.Float64()*2-1)*maxDrift)
		}
		p := trace.TimePoint{Index: idx, X: x, Y: y}
		if len(g.actions) > 0 && g.rng.Float64() < actionChance {
			p.Action = g.actions[g.rng.IntN(len(g.actions))]
		}
		sparse = append(sparse, p)
	}
	return trace.FromSparse(g.grid, sparse)
}

func clamp(v float64) float64 {
	return min(max(v, 0), 1)
}
