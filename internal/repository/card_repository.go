package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/taskboard/internal/domain"
)

// PostgresCardRepository implements domain.CardRepository using PostgreSQL.
// Labels and attachments are embedded JSONB arrays.
type PostgresCardRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCardRepository creates a new card repository.
func NewPostgresCardRepository(db *sql.DB, logger *slog.Logger) *PostgresCardRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardRepository{
		db:     db,
		logger: logger,
	}
}

const cardColumns = `id, title, list_id, description, due_date, card_order,
		attachments, assigned_to, created_by, labels, priority, status,
		created_at, updated_at`

// Create inserts a new card. The order value is supplied by the caller from
// the current sibling count.
func (r *PostgresCardRepository) Create(ctx context.Context, card *domain.Card) error {
	attachments, err := marshalJSON(card.Attachments)
	if err != nil {
		return err
	}
	labels, err := marshalJSON(card.Labels)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cards (title, list_id, description, due_date, card_order,
			attachments, assigned_to, created_by, labels, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		card.Title,
		card.List,
		card.Description,
		card.DueDate,
		card.Order,
		attachments,
		nullable(card.AssignedTo),
		card.CreatedBy,
		labels,
		card.Priority,
		card.Status,
	).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create card",
			slog.String("list_id", card.List),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// GetByID retrieves a card by ID.
func (r *PostgresCardRepository) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

// ListByList returns the list's cards ordered ascending by order.
func (r *PostgresCardRepository) ListByList(ctx context.Context, listID string) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE list_id = $1 ORDER BY card_order ASC`

	rows, err := r.db.QueryContext(ctx, query, listID)
	if err != nil {
		r.logger.Error("failed to list cards",
			slog.String("list_id", listID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}

// CountByList returns the current sibling count.
func (r *PostgresCardRepository) CountByList(ctx context.Context, listID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE list_id = $1`, listID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}

// Update rewrites the card's mutable fields, including its list reference
// and order. No sibling renumbering happens here.
func (r *PostgresCardRepository) Update(ctx context.Context, card *domain.Card) error {
	attachments, err := marshalJSON(card.Attachments)
	if err != nil {
		return err
	}
	labels, err := marshalJSON(card.Labels)
	if err != nil {
		return err
	}

	query := `
		UPDATE cards
		SET title = $1, list_id = $2, description = $3, due_date = $4,
			card_order = $5, attachments = $6, assigned_to = $7, labels = $8,
			priority = $9, status = $10, updated_at = now()
		WHERE id = $11
		RETURNING updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		card.Title,
		card.List,
		card.Description,
		card.DueDate,
		card.Order,
		attachments,
		nullable(card.AssignedTo),
		labels,
		card.Priority,
		card.Status,
		card.ID,
	).Scan(&card.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update card: %w", err)
	}

	return nil
}

// Delete removes the card row.
func (r *PostgresCardRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
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

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func scanCard(row rowScanner) (*domain.Card, error) {
	card := &domain.Card{}
	var attachments, labels []byte
	var assignedTo sql.NullString

	err := row.Scan(
		&card.ID,
		&card.Title,
		&card.List,
		&card.Description,
		&card.DueDate,
		&card.Order,
		&attachments,
		&assignedTo,
		&card.CreatedBy,
		&labels,
		&card.Priority,
		&card.Status,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.AssignedTo = assignedTo.String
	if err := unmarshalJSON(attachments, &card.Attachments); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(labels, &card.Labels); err != nil {
		return nil, err
	}

	return card, nil
}
