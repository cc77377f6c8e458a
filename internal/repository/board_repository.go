package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"github.com/yourorg/taskboard/internal/domain"
)

// PostgresBoardRepository implements domain.BoardRepository using
// PostgreSQL. Member sets are uuid arrays; configuration and statistics are
// JSONB blobs stored verbatim.
type PostgresBoardRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresBoardRepository creates a new board repository.
func NewPostgresBoardRepository(db *sql.DB, logger *slog.Logger) *PostgresBoardRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBoardRepository{
		db:     db,
		logger: logger,
	}
}

const boardColumns = `id, name, description, project_id, type, administrators,
		perm_view, perm_edit, perm_admin, visibility, configuration,
		statistics, is_active, created_at, updated_at`

// Create inserts a new board.
func (r *PostgresBoardRepository) Create(ctx context.Context, board *domain.Board) error {
	config, err := marshalJSON(board.Configuration)
	if err != nil {
		return err
	}
	stats, err := marshalJSON(board.Statistics)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO boards (name, description, project_id, type, administrators,
			perm_view, perm_edit, perm_admin, visibility, configuration,
			statistics, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		board.Name,
		board.Description,
		board.Project,
		board.Type,
		pq.Array(board.Administrators),
		pq.Array(board.Permissions.View),
		pq.Array(board.Permissions.Edit),
		pq.Array(board.Permissions.Admin),
		board.Visibility,
		config,
		stats,
		board.IsActive,
	).Scan(&board.ID, &board.CreatedAt, &board.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create board",
			slog.String("name", board.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create board: %w", err)
	}

	return nil
}

// GetByID retrieves a board by ID.
func (r *PostgresBoardRepository) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE id = $1`

	board, err := scanBoard(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get board: %w", err)
	}
	return board, nil
}

// ListForUser returns boards where the user appears in administrators or any
// permission set. Visibility is intentionally not part of this filter.
func (r *PostgresBoardRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Board, error) {
	query := `
		SELECT ` + boardColumns + `
		FROM boards
		WHERE $1 = ANY(administrators)
			OR $1 = ANY(perm_view)
			OR $1 = ANY(perm_edit)
			OR $1 = ANY(perm_admin)
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

// ListByProject returns all boards of a project, unfiltered by requester.
func (r *PostgresBoardRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE project_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, projectID)
}

func (r *PostgresBoardRepository) list(ctx context.Context, query string, arg any) ([]*domain.Board, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		r.logger.Error("failed to list boards", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, board)
	}

	return boards, rows.Err()
}

// Update applies the patch fields that are present and returns the updated
// board. No permission check happens here or in the caller.
func (r *PostgresBoardRepository) Update(ctx context.Context, id string, patch domain.BoardPatch) (*domain.Board, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Project != nil {
		add("project_id", *patch.Project)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.Visibility != nil {
		add("visibility", *patch.Visibility)
	}
	if patch.Administrators != nil {
		add("administrators", pq.Array(patch.Administrators))
	}
	if patch.Permissions != nil {
		add("perm_view", pq.Array(patch.Permissions.View))
		add("perm_edit", pq.Array(patch.Permissions.Edit))
		add("perm_admin", pq.Array(patch.Permissions.Admin))
	}
	if patch.Configuration != nil {
		config, err := marshalJSON(patch.Configuration)
		if err != nil {
			return nil, err
		}
		add("configuration", config)
	}
	if patch.Statistics != nil {
		stats, err := marshalJSON(patch.Statistics)
		if err != nil {
			return nil, err
		}
		add("statistics", stats)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE boards SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), boardColumns,
	)

	board, err := scanBoard(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update board: %w", err)
	}

	return board, nil
}

// Delete removes the board row. Child lists and cards are not cascaded;
// orphans remain queryable by id.
func (r *PostgresBoardRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	return nil
}

func scanBoard(row rowScanner) (*domain.Board, error) {
	board := &domain.Board{}
	var config, stats []byte
	var admins, view, edit, admin pq.StringArray

	err := row.Scan(
		&board.ID,
		&board.Name,
		&board.Description,
		&board.Project,
		&board.Type,
		&admins,
		&view,
		&edit,
		&admin,
		&board.Visibility,
		&config,
		&stats,
		&board.IsActive,
		&board.CreatedAt,
		&board.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	board.Administrators = admins
	board.Permissions = domain.BoardPermissions{View: view, Edit: edit, Admin: admin}
	if err := unmarshalJSON(config, &board.Configuration); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(stats, &board.Statistics); err != nil {
		return nil, err
	}

	return board, nil
}
