// Package api exposes trace submission, analysis and team rankings over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/dedupe"
	"github.com/okian/fieldtrace/internal/domain/model"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/internal/domain/trace"
	"github.com/okian/fieldtrace/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a submission for async analysis. Returns false on backpressure.
	Enqueue(ctx context.Context, s model.Submission) bool

	// Season lookups.
	Resolve(year int) (season.Season, error)
	Seasons() []season.Season

	// Read operations expose ranking data.
	TopN(ctx context.Context, n int) ([]types.Entry, error)
	Team(ctx context.Context, team string) (types.TeamView, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxLimit     int
	maxBodyBytes int64
	bins         int

	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	tracesHandler   *TracesHandler
	analyzeHandler  *AnalyzeHandler
	rankingsHandler *RankingsHandler
	teamHandler     *TeamHandler
	seasonsHandler  *SeasonsHandler
	schemaHandler   *SchemaHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxLimit:     DefaultMaxLimit,
		maxBodyBytes: DefaultMaxBodyBytes,
		bins:         analysis.DefaultBins,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.tracesHandler = NewTracesHandler(deps, s.maxBodyBytes)
	s.analyzeHandler = NewAnalyzeHandler(deps, s.maxBodyBytes, s.bins)
	s.rankingsHandler = NewRankingsHandler(deps, s.maxLimit)
	s.teamHandler = NewTeamHandler(deps)
	s.seasonsHandler = NewSeasonsHandler(deps)
	s.schemaHandler = NewSchemaHandler()
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/traces", MetricsMiddleware(s.tracesHandler.HandlePostTrace, "traces"))
	mux.HandleFunc("/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/teams/", MetricsMiddleware(s.teamHandler.HandleGetTeam, "teams"))
	mux.HandleFunc("/seasons", MetricsMiddleware(s.seasonsHandler.HandleGetSeasons, "seasons"))
	mux.HandleFunc("/schema/", MetricsMiddleware(s.schemaHandler.HandleSchema, "schema"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeTraceError reports a parse failure along with its kind.
func writeTraceError(w http.ResponseWriter, op string, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    "invalid_trace",
		Message: WrapKind(op, ErrInvalidTrace, err).Error(),
		Kind:    parseErrorKind(err),
	})
}

// parseErrorKind returns decode, validation or syntax for trace errors.
func parseErrorKind(err error) string {
	var pe *trace.ParseError
	if errors.As(err, &pe) {
		return pe.Kind()
	}
	switch {
	case errors.Is(err, trace.ErrDecode):
		return "decode"
	case errors.Is(err, trace.ErrValidation):
		return "validation"
	}
	return "syntax"
}
