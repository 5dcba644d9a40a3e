package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fieldtrace/internal/domain/dedupe"
	"github.com/okian/fieldtrace/internal/domain/model"
	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/internal/domain/trace"
	"github.com/okian/fieldtrace/pkg/metrics"
)

// TraceDependencies defines what trace submission needs.
type TraceDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, s model.Submission) bool
	Resolve(year int) (season.Season, error)
}

// TracePayload is the raw wire JSON of a trace: an envelope or a bare
// sparse tuple array.
type TracePayload json.RawMessage

// UnmarshalJSON keeps the payload verbatim.
func (p *TracePayload) UnmarshalJSON(data []byte) error {
	*p = append((*p)[:0], data...)
	return nil
}

// MarshalJSON emits the payload verbatim.
func (p TracePayload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// SubmitRequest is the body of POST /traces.
type SubmitRequest struct {
	SubmissionID string       `json:"submission_id,omitempty" jsonschema:"description=Idempotency key. Generated when absent."`
	Team         string       `json:"team" jsonschema:"required,description=Team number or key"`
	Match        string       `json:"match" jsonschema:"required,description=Match key such as qm12"`
	Season       int          `json:"season,omitempty" jsonschema:"description=Season year. 0 selects the default season."`
	Trace        TracePayload `json:"trace" jsonschema:"required"`
}

func (r SubmitRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Team) == "":
		return errors.New("missing team")
	case strings.TrimSpace(r.Match) == "":
		return errors.New("missing match")
	case len(r.Trace) == 0 || string(r.Trace) == "null":
		return errors.New("missing trace")
	}
	return nil
}

// SubmitResponse acknowledges a submission.
type SubmitResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id"`
	Duplicate    bool   `json:"duplicate"`
	Samples      int    `json:"samples,omitempty"`
}

// TracesHandler handles trace submissions.
type TracesHandler struct {
	deps         TraceDependencies
	maxBodyBytes int64
	now          func() time.Time
}

// NewTracesHandler creates a new traces handler.
func NewTracesHandler(deps TraceDependencies, maxBodyBytes int64) *TracesHandler {
	return &TracesHandler{deps: deps, maxBodyBytes: maxBodyBytes, now: time.Now}
}

// HandlePostTrace handles POST /traces requests.
func (h *TracesHandler) HandlePostTrace(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_trace"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes)).Decode(&req); err != nil {
		writeBodyError(w, op, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	s, err := h.deps.Resolve(req.Season)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_season", WrapKind(op, ErrUnknownSeason, err))
		return
	}

	tr, err := parseTrace(req.Trace, s.Grid())
	if err != nil {
		writeTraceError(w, op, err)
		return
	}

	id := strings.TrimSpace(req.SubmissionID)
	if id == "" {
		id = uuid.NewString()
	}

	// Idempotency check: mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), id) {
		metrics.RecordTraceDuplicate()
		writeJSON(w, http.StatusOK, SubmitResponse{Status: "duplicate", SubmissionID: id, Duplicate: true})
		return
	}

	sub := model.Submission{
		ID:         id,
		Team:       strings.TrimSpace(req.Team),
		Match:      strings.TrimSpace(req.Match),
		Season:     s.Year(),
		Trace:      tr,
		ReceivedAt: h.now(),
	}
	if ok := h.deps.Enqueue(r.Context(), sub); !ok {
		// Roll back the seen mark so the client can retry.
		h.deps.Unrecord(r.Context(), id)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}

	metrics.RecordTraceSubmitted(len(req.Trace))
	writeJSON(w, http.StatusAccepted, SubmitResponse{Status: "accepted", SubmissionID: id, Samples: tr.Len()})
}

// parseTrace runs trace.Parse and records its latency and failures.
func parseTrace(data []byte, grid trace.Grid) (*trace.Trace, error) {
	start := time.Now()
	tr, err := trace.Parse(data, grid)
	metrics.RecordParseLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordParseError(parseErrorKind(err))
		return nil, err
	}
	return tr, nil
}

// writeBodyError maps a body read or decode failure to 413 or 400.
func writeBodyError(w http.ResponseWriter, op string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large",
			WrapKind(op, ErrBadRequest, fmt.Errorf("body exceeds %d bytes", tooLarge.Limit)))
		return
	}
	if errors.Is(err, io.EOF) {
		err = errors.New("empty body")
	}
	writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
}
