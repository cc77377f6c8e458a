package domain

import (
	"context"
	"time"
)

// Team is a flat grouping of users. It does not participate in the board
// permission model.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []string  `json:"members"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// TeamRepository defines data access for teams.
type TeamRepository interface {
	Create(ctx context.Context, team *Team) error
	ListByCreator(ctx context.Context, userID string) ([]*Team, error)
}
