package domain

import (
	"context"
	"time"
)

// List is an ordered column of cards within a board. The order field is a
// sibling-position hint assigned at creation time, not a dense sequence.
type List struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Board     string    `json:"board"`
	CreatedBy string    `json:"createdBy"`
	Order     int       `json:"order"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListRepository defines data access for lists.
type ListRepository interface {
	Create(ctx context.Context, list *List) error
	GetByID(ctx context.Context, id string) (*List, error)
	// ListByBoard returns the board's lists ordered ascending by order.
	ListByBoard(ctx context.Context, boardID string) ([]*List, error)
	// CountByBoard returns the current sibling count, used as the next
	// order value at creation time.
	CountByBoard(ctx context.Context, boardID string) (int, error)
	Update(ctx context.Context, list *List) error
	// Delete removes the list only. Child cards are not cascaded.
	Delete(ctx context.Context, id string) error
}
