package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/security/middleware"
	"github.com/yourorg/taskboard/internal/service"
)

// BoardHandler handles board CRUD.
type BoardHandler struct {
	boards *service.BoardService
	logger *slog.Logger
}

func NewBoardHandler(boards *service.BoardService, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{boards: boards, logger: logger}
}

type createBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ProjectID   string `json:"projectId"`
	Type        string `json:"type"`
}

type updateBoardRequest struct {
	Name           *string                    `json:"name"`
	Description    *string                    `json:"description"`
	Project        *string                    `json:"project"`
	Type           *string                    `json:"type"`
	Visibility     *string                    `json:"visibility"`
	Administrators []string                   `json:"administrators"`
	Permissions    *domain.BoardPermissions   `json:"permissions"`
	Configuration  *domain.BoardConfiguration `json:"configuration"`
	IsActive       *bool                      `json:"isActive"`
}

// Create handles POST /api/board.
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized: No user info"})
		return
	}

	var req createBoardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
		return
	}

	board, err := h.boards.Create(r.Context(), userID, service.CreateBoardInput{
		Name:        req.Name,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		Type:        req.Type,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, board)
}

// List handles GET /api/board.
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	boards, err := h.boards.ListMine(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, boards)
}

// Get handles GET /api/board/{id}.
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	board, err := h.boards.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, board)
}

// ListByProject handles GET /api/board/project/{projectId}.
func (h *BoardHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	boards, err := h.boards.ListByProject(r.Context(), r.PathValue("projectId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, boards)
}

// Update handles PUT /api/board/{id}.
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateBoardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
		return
	}

	board, err := h.boards.Update(r.Context(), r.PathValue("id"), domain.BoardPatch{
		Name:           req.Name,
		Description:    req.Description,
		Project:        req.Project,
		Type:           req.Type,
		Visibility:     req.Visibility,
		Administrators: req.Administrators,
		Permissions:    req.Permissions,
		Configuration:  req.Configuration,
		IsActive:       req.IsActive,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, board)
}

// Delete handles DELETE /api/board/{id}.
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.boards.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Board deleted successfully"})
}
