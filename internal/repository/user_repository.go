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

// PostgresUserRepository implements domain.UserRepository using PostgreSQL.
type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository.
func NewPostgresUserRepository(db *sql.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, name, email, username, password_hash, display_name, avatar,
		job_title, department, location, timezone, language, phone_number,
		role, is_active, last_login, preferences, grants, created_at, updated_at`

// Create inserts a new user.
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	prefs, err := marshalJSON(user.Preferences)
	if err != nil {
		return err
	}
	grants, err := marshalJSON(user.Grants)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (name, email, username, password_hash, display_name, avatar,
			job_title, department, location, timezone, language, phone_number,
			role, is_active, preferences, grants)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		user.Name,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.DisplayName,
		user.Avatar,
		user.JobTitle,
		user.Department,
		user.Location,
		user.Timezone,
		user.Language,
		user.PhoneNumber,
		user.Role,
		user.IsActive,
		prefs,
		grants,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dup := mapDuplicate(err); dup != err {
			return dup
		}
		r.logger.Error("failed to create user",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves an active user by email.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND is_active = true`, email)
}

// GetByUsername retrieves an active user by username.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 AND is_active = true`, username)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user := &domain.User{}
	var prefs, grants []byte

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Avatar,
		&user.JobTitle,
		&user.Department,
		&user.Location,
		&user.Timezone,
		&user.Language,
		&user.PhoneNumber,
		&user.Role,
		&user.IsActive,
		&user.LastLogin,
		&prefs,
		&grants,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := unmarshalJSON(prefs, &user.Preferences); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(grants, &user.Grants); err != nil {
		return nil, err
	}

	return user, nil
}

// GetByIDs retrieves several users at once, keyed by id. Missing ids are
// simply absent from the result.
func (r *PostgresUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user := &domain.User{}
		var prefs, grants []byte
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Username,
			&user.PasswordHash,
			&user.DisplayName,
			&user.Avatar,
			&user.JobTitle,
			&user.Department,
			&user.Location,
			&user.Timezone,
			&user.Language,
			&user.PhoneNumber,
			&user.Role,
			&user.IsActive,
			&user.LastLogin,
			&prefs,
			&grants,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if err := unmarshalJSON(prefs, &user.Preferences); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(grants, &user.Grants); err != nil {
			return nil, err
		}
		out[user.ID] = user
	}

	return out, rows.Err()
}

// Update updates an existing user.
func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	prefs, err := marshalJSON(user.Preferences)
	if err != nil {
		return err
	}
	grants, err := marshalJSON(user.Grants)
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET name = $1, email = $2, username = $3, password_hash = $4,
			display_name = $5, avatar = $6, job_title = $7, department = $8,
			location = $9, timezone = $10, language = $11, phone_number = $12,
			role = $13, is_active = $14, last_login = $15, preferences = $16,
			grants = $17, updated_at = now()
		WHERE id = $18
		RETURNING updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		user.Name,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.DisplayName,
		user.Avatar,
		user.JobTitle,
		user.Department,
		user.Location,
		user.Timezone,
		user.Language,
		user.PhoneNumber,
		user.Role,
		user.IsActive,
		user.LastLogin,
		prefs,
		grants,
		user.ID,
	).Scan(&user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if dup := mapDuplicate(err); dup != err {
			return dup
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}
