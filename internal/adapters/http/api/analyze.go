package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/pkg/metrics"
)

// AnalyzeDependencies defines what synchronous analysis needs.
type AnalyzeDependencies interface {
	Resolve(year int) (season.Season, error)
}

// AnalyzeHandler analyzes a single trace inline.
type AnalyzeHandler struct {
	deps         AnalyzeDependencies
	maxBodyBytes int64
	bins         int
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps AnalyzeDependencies, maxBodyBytes int64, bins int) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps, maxBodyBytes: maxBodyBytes, bins: bins}
}

// HandleAnalyze handles POST /analyze?bins=N&season=Y requests. The body is
// the trace wire JSON.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	bins, err := intParam(r, "bins", h.bins)
	if err != nil || bins < 1 || bins > analysis.MaxBins {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	year, err := intParam(r, "season", 0)
	if err != nil || year < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	s, err := h.deps.Resolve(year)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_season", WrapKind(op, ErrUnknownSeason, err))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		writeBodyError(w, op, err)
		return
	}
	if len(body) == 0 {
		writeBodyError(w, op, errors.New("empty body"))
		return
	}

	tr, err := parseTrace(body, s.Grid())
	if err != nil {
		writeTraceError(w, op, err)
		return
	}

	start := time.Now()
	report := analysis.Analyze(tr, s, bins)
	metrics.RecordAnalysis(s.Name(), float64(time.Since(start).Microseconds())/1000)
	writeJSON(w, http.StatusOK, report)
}

// intParam reads an integer query parameter, returning def when absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
