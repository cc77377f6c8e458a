package domain

import (
	"context"
	"time"
)

// Card priorities. Cards use "urgent" where projects use "critical".
const (
	CardPriorityLow    = "low"
	CardPriorityMedium = "medium"
	CardPriorityHigh   = "high"
	CardPriorityUrgent = "urgent"
)

// Card statuses.
const (
	CardStatusActive    = "active"
	CardStatusArchived  = "archived"
	CardStatusCompleted = "completed"
)

// Card is a unit of work within a list.
type Card struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	List        string       `json:"list"`
	Description string       `json:"description"`
	DueDate     *time.Time   `json:"dueDate"`
	Order       int          `json:"order"`
	Attachments []Attachment `json:"attachments"`
	AssignedTo  string       `json:"assignedTo,omitempty"`
	CreatedBy   string       `json:"createdBy"`
	Labels      []Label      `json:"labels"`
	Priority    string       `json:"priority"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Label is a name+color pair attached to a card.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Attachment describes an externally stored file appended to a card.
type Attachment struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimetype"`
	URL          string    `json:"url"`
	UploadedBy   string    `json:"uploadedBy"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// CardPatch carries a partial card update. Nil pointer fields were omitted
// from the request. For the nullable fields the Set flag distinguishes
// "omitted" from "explicitly cleared".
type CardPatch struct {
	Title         *string
	Description   *string
	DueDate       *time.Time
	DueDateSet    bool
	AssignedTo    *string
	AssignedToSet bool
	Priority      *string
	Labels        []Label
	LabelsSet     bool
}

// CardRepository defines data access for cards.
type CardRepository interface {
	Create(ctx context.Context, card *Card) error
	GetByID(ctx context.Context, id string) (*Card, error)
	// ListByList returns the list's cards ordered ascending by order.
	ListByList(ctx context.Context, listID string) ([]*Card, error)
	CountByList(ctx context.Context, listID string) (int, error)
	Update(ctx context.Context, card *Card) error
	Delete(ctx context.Context, id string) error
}
