package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/yourorg/taskboard/internal/domain"
)

// PostgresTeamRepository implements domain.TeamRepository using PostgreSQL.
type PostgresTeamRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTeamRepository creates a new team repository.
func NewPostgresTeamRepository(db *sql.DB, logger *slog.Logger) *PostgresTeamRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTeamRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new team.
func (r *PostgresTeamRepository) Create(ctx context.Context, team *domain.Team) error {
	query := `
		INSERT INTO teams (name, members, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		team.Name,
		pq.Array(team.Members),
		team.CreatedBy,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create team",
			slog.String("name", team.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

// ListByCreator returns teams created by the user.
func (r *PostgresTeamRepository) ListByCreator(ctx context.Context, userID string) ([]*domain.Team, error) {
	query := `SELECT id, name, members, created_by, created_at FROM teams WHERE created_by = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*domain.Team
	for rows.Next() {
		team := &domain.Team{}
		var members pq.StringArray
		err := rows.Scan(&team.ID, &team.Name, &members, &team.CreatedBy, &team.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		team.Members = members
		teams = append(teams, team)
	}

	return teams, rows.Err()
}
