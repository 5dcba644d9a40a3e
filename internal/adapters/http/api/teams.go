package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/fieldtrace/internal/adapters/repository"
	"github.com/okian/fieldtrace/internal/domain/types"
)

// TeamDependencies defines the interface for team reads.
type TeamDependencies interface {
	Team(ctx context.Context, team string) (types.TeamView, error)
}

// TeamHandler handles team requests.
type TeamHandler struct {
	deps TeamDependencies
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies) *TeamHandler {
	return &TeamHandler{deps: deps}
}

// HandleGetTeam handles GET /teams/{team} requests.
func (h *TeamHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	team := strings.TrimPrefix(r.URL.Path, "/teams/")
	if team == "" || strings.Contains(team, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	view, err := h.deps.Team(r.Context(), team)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}
