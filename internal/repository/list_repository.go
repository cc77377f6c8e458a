package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/taskboard/internal/domain"
)

// PostgresListRepository implements domain.ListRepository using PostgreSQL.
type PostgresListRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresListRepository creates a new list repository.
func NewPostgresListRepository(db *sql.DB, logger *slog.Logger) *PostgresListRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresListRepository{
		db:     db,
		logger: logger,
	}
}

const listColumns = `id, title, board_id, created_by, list_order, is_active, created_at, updated_at`

// Create inserts a new list. The order value is supplied by the caller from
// the current sibling count.
func (r *PostgresListRepository) Create(ctx context.Context, list *domain.List) error {
	query := `
		INSERT INTO lists (title, board_id, created_by, list_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		list.Title,
		list.Board,
		list.CreatedBy,
		list.Order,
		list.IsActive,
	).Scan(&list.ID, &list.CreatedAt, &list.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create list",
			slog.String("board_id", list.Board),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create list: %w", err)
	}

	return nil
}

// GetByID retrieves a list by ID.
func (r *PostgresListRepository) GetByID(ctx context.Context, id string) (*domain.List, error) {
	list := &domain.List{}

	query := `SELECT ` + listColumns + ` FROM lists WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&list.ID,
		&list.Title,
		&list.Board,
		&list.CreatedBy,
		&list.Order,
		&list.IsActive,
		&list.CreatedAt,
		&list.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	return list, nil
}

// ListByBoard returns the board's lists ordered ascending by order.
func (r *PostgresListRepository) ListByBoard(ctx context.Context, boardID string) ([]*domain.List, error) {
	query := `SELECT ` + listColumns + ` FROM lists WHERE board_id = $1 ORDER BY list_order ASC`

	rows, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		r.logger.Error("failed to list lists",
			slog.String("board_id", boardID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	var lists []*domain.List
	for rows.Next() {
		list := &domain.List{}
		err := rows.Scan(
			&list.ID,
			&list.Title,
			&list.Board,
			&list.CreatedBy,
			&list.Order,
			&list.IsActive,
			&list.CreatedAt,
			&list.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}

	return lists, rows.Err()
}

// CountByBoard returns the current sibling count.
func (r *PostgresListRepository) CountByBoard(ctx context.Context, boardID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lists WHERE board_id = $1`, boardID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lists: %w", err)
	}
	return count, nil
}

// Update rewrites the list's mutable fields.
func (r *PostgresListRepository) Update(ctx context.Context, list *domain.List) error {
	query := `
		UPDATE lists
		SET title = $1, list_order = $2, is_active = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		list.Title,
		list.Order,
		list.IsActive,
		list.ID,
	).Scan(&list.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update list: %w", err)
	}

	return nil
}

// Delete removes the list row only. Child cards are left in place.
func (r *PostgresListRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}
