package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/taskboard/internal/security/middleware"
	"github.com/yourorg/taskboard/internal/service"
)

// TeamHandler handles team creation and listing. Team endpoints respond
// with an "error" payload key on failure.
type TeamHandler struct {
	teams  *service.TeamService
	logger *slog.Logger
}

func NewTeamHandler(teams *service.TeamService, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{teams: teams, logger: logger}
}

type createTeamRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Create handles POST /api/teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req createTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	team, err := h.teams.Create(r.Context(), userID, req.Name, req.Members)
	if err != nil {
		writeErrorKeyed(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, team)
}

// List handles GET /api/teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	teams, err := h.teams.ListMine(r.Context(), userID)
	if err != nil {
		writeErrorKeyed(w, err)
		return
	}

	writeJSON(w, http.StatusOK, teams)
}
