package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/security/middleware"
	"github.com/yourorg/taskboard/internal/service"
)

// CardHandler handles card CRUD, moves, and attachments.
type CardHandler struct {
	cards  *service.CardService
	logger *slog.Logger
}

func NewCardHandler(cards *service.CardService, logger *slog.Logger) *CardHandler {
	return &CardHandler{cards: cards, logger: logger}
}

type createCardRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	AssignedTo  string     `json:"assignedTo"`
	Priority    string     `json:"priority"`
}

// updateCardRequest keeps nullable fields raw so an omitted field and an
// explicit null stay distinguishable.
type updateCardRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	DueDate     json.RawMessage `json:"dueDate"`
	AssignedTo  json.RawMessage `json:"assignedTo"`
	Priority    *string         `json:"priority"`
	Labels      json.RawMessage `json:"labels"`
}

type moveCardRequest struct {
	NewListID string `json:"newListId"`
	NewOrder  *int   `json:"newOrder"`
}

// Create handles POST /api/cards/list/{listId}.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req createCardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
		return
	}

	card, err := h.cards.Create(r.Context(), userID, r.PathValue("listId"), service.CreateCardInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
		Priority:    req.Priority,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, card)
}

// ListByList handles GET /api/cards/list/{listId}.
func (h *CardHandler) ListByList(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	cards, err := h.cards.ListByList(r.Context(), userID, r.PathValue("listId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// Update handles PUT /api/cards/{id}.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req updateCardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
		return
	}

	patch := domain.CardPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	}

	if len(req.DueDate) > 0 {
		patch.DueDateSet = true
		if !isNull(req.DueDate) {
			var due time.Time
			if err := json.Unmarshal(req.DueDate, &due); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
				return
			}
			patch.DueDate = &due
		}
	}

	if len(req.AssignedTo) > 0 {
		patch.AssignedToSet = true
		if !isNull(req.AssignedTo) {
			var assignee string
			if err := json.Unmarshal(req.AssignedTo, &assignee); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
				return
			}
			patch.AssignedTo = &assignee
		}
	}

	if len(req.Labels) > 0 {
		patch.LabelsSet = true
		if !isNull(req.Labels) {
			if err := json.Unmarshal(req.Labels, &patch.Labels); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
				return
			}
		}
	}

	card, err := h.cards.Update(r.Context(), userID, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// Move handles PUT /api/cards/{id}/move.
func (h *CardHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req moveCardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
		return
	}

	card, err := h.cards.Move(r.Context(), userID, r.PathValue("id"), req.NewListID, req.NewOrder)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// Delete handles DELETE /api/cards/{id}.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	if err := h.cards.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Card deleted successfully"})
}

// UploadAttachment handles POST /api/cards/{id}/attachment. The file
// arrives as multipart form field "file".
func (h *CardHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "No file uploaded"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "No file uploaded"})
		return
	}
	defer file.Close()

	attachment, card, err := h.cards.UploadAttachment(
		r.Context(), userID, r.PathValue("id"),
		file, header.Filename, header.Header.Get("Content-Type"), header.Size,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "File uploaded successfully",
		"attachment": attachment,
		"card":       card,
	})
}

// DeleteAttachment handles DELETE /api/cards/{id}/attachment/{attachmentId}.
func (h *CardHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	card, err := h.cards.DeleteAttachment(r.Context(), userID, r.PathValue("id"), r.PathValue("attachmentId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Attachment deleted successfully",
		"card":    card,
	})
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
