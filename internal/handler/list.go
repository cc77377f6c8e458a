package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/taskboard/internal/security/middleware"
	"github.com/yourorg/taskboard/internal/service"
)

// ListHandler handles list CRUD within boards.
type ListHandler struct {
	lists  *service.ListService
	logger *slog.Logger
}

func NewListHandler(lists *service.ListService, logger *slog.Logger) *ListHandler {
	return &ListHandler{lists: lists, logger: logger}
}

type createListRequest struct {
	Title   string `json:"title"`
	BoardID string `json:"boardId"`
}

type updateListRequest struct {
	Title *string `json:"title"`
	Order *int    `json:"order"`
}

// Create handles POST /api/lists.
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req createListRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
		return
	}

	list, err := h.lists.Create(r.Context(), userID, req.Title, req.BoardID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, list)
}

// CreateForBoard handles POST /api/board/{boardId}/lists. The board id in
// the path wins over any boardId in the body.
func (h *ListHandler) CreateForBoard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req createListRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
		return
	}
	req.BoardID = r.PathValue("boardId")

	list, err := h.lists.Create(r.Context(), userID, req.Title, req.BoardID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, list)
}

// ListByBoard handles GET /api/lists/board/{boardId} and its
// GET /api/board/{boardId}/lists alias.
func (h *ListHandler) ListByBoard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	lists, err := h.lists.ListByBoard(r.Context(), userID, r.PathValue("boardId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lists)
}

// Update handles PUT /api/lists/{id}.
func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req updateListRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
		return
	}

	list, err := h.lists.Update(r.Context(), userID, r.PathValue("id"), req.Title, req.Order)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Delete handles DELETE /api/lists/{id}.
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	if err := h.lists.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "List deleted successfully"})
}
