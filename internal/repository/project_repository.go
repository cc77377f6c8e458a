package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/yourorg/taskboard/internal/domain"
)

// PostgresProjectRepository implements domain.ProjectRepository using
// PostgreSQL. The activity log stays embedded in the project row as a JSONB
// array, matching the single-document model.
type PostgresProjectRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProjectRepository creates a new project repository.
func NewPostgresProjectRepository(db *sql.DB, logger *slog.Logger) *PostgresProjectRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProjectRepository{
		db:     db,
		logger: logger,
	}
}

const projectColumns = `id, title, description, status, priority, start_date, end_date,
		deadline, progress, created_by, members, updates, tags, is_archived,
		settings, created_at, updated_at`

// Create inserts a new project.
func (r *PostgresProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	updates, err := marshalJSON(project.Updates)
	if err != nil {
		return err
	}
	settings, err := marshalJSON(project.Settings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO projects (title, description, status, priority, start_date,
			end_date, deadline, progress, created_by, members, updates, tags,
			is_archived, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		project.Title,
		project.Description,
		project.Status,
		project.Priority,
		project.StartDate,
		project.EndDate,
		project.Deadline,
		project.Progress,
		project.CreatedBy,
		pq.Array(project.Members),
		updates,
		pq.Array(project.Tags),
		project.IsArchived,
		settings,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create project",
			slog.String("title", project.Title),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID.
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ListForUser returns projects where the user is the creator or a member,
// most recently updated first.
func (r *PostgresProjectRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE created_by = $1 OR $1 = ANY(members)
		ORDER BY updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to list projects",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// Update rewrites the project's mutable fields. The updates log is written
// through AppendUpdate only.
func (r *PostgresProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	settings, err := marshalJSON(project.Settings)
	if err != nil {
		return err
	}

	query := `
		UPDATE projects
		SET title = $1, description = $2, status = $3, priority = $4,
			start_date = $5, end_date = $6, deadline = $7, progress = $8,
			members = $9, tags = $10, is_archived = $11, settings = $12,
			updated_at = now()
		WHERE id = $13
		RETURNING updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		project.Title,
		project.Description,
		project.Status,
		project.Priority,
		project.StartDate,
		project.EndDate,
		project.Deadline,
		project.Progress,
		pq.Array(project.Members),
		pq.Array(project.Tags),
		project.IsArchived,
		settings,
		project.ID,
	).Scan(&project.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	return nil
}

// AppendUpdate appends one immutable entry to the embedded activity log.
func (r *PostgresProjectRepository) AppendUpdate(ctx context.Context, projectID string, update domain.ProjectUpdate) error {
	entry, err := marshalJSON([]domain.ProjectUpdate{update})
	if err != nil {
		return err
	}

	query := `
		UPDATE projects
		SET updates = updates || $2::jsonb, updated_at = now()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, projectID, entry)
	if err != nil {
		return fmt.Errorf("failed to append project update: %w", err)
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

// Delete removes the project row.
func (r *PostgresProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	project := &domain.Project{}
	var updates, settings []byte
	var members, tags pq.StringArray

	err := row.Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.Status,
		&project.Priority,
		&project.StartDate,
		&project.EndDate,
		&project.Deadline,
		&project.Progress,
		&project.CreatedBy,
		&members,
		&updates,
		&tags,
		&project.IsArchived,
		&settings,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	project.Members = members
	project.Tags = tags
	if err := unmarshalJSON(updates, &project.Updates); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(settings, &project.Settings); err != nil {
		return nil, err
	}

	return project, nil
}
