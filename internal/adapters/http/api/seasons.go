package api

import (
	"net/http"

	"github.com/okian/fieldtrace/internal/domain/season"
)

// SeasonsDependencies lists the registered seasons.
type SeasonsDependencies interface {
	Seasons() []season.Season
}

// SeasonsHandler handles season listing requests.
type SeasonsHandler struct {
	deps SeasonsDependencies
}

// NewSeasonsHandler creates a new seasons handler.
func NewSeasonsHandler(deps SeasonsDependencies) *SeasonsHandler {
	return &SeasonsHandler{deps: deps}
}

type seasonResponse struct {
	Year    int                `json:"year"`
	Name    string             `json:"name"`
	Actions []season.ActionDef `json:"actions"`
	Zones   []season.Zone      `json:"zones"`
}

// HandleGetSeasons handles GET /seasons requests.
func (h *SeasonsHandler) HandleGetSeasons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	seasons := h.deps.Seasons()
	out := make([]seasonResponse, 0, len(seasons))
	for _, s := range seasons {
		out = append(out, seasonResponse{
			Year:    s.Year(),
			Name:    s.Name(),
			Actions: s.Actions(),
			Zones:   s.Zones(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
