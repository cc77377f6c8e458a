package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/yourorg/taskboard/internal/domain"
)

func TestCreateUserMapsDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{
		Code:       "23505",
		Constraint: "users_email_key",
	})

	repo := NewPostgresUserRepository(db, nil)
	err = repo.Create(context.Background(), &domain.User{
		Name: "Alice", Email: "alice@example.com", Username: "alice",
	})

	var dup *domain.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if dup.Field != "email" {
		t.Fatalf("expected field email, got %q", dup.Field)
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("duplicate error must match the sentinel")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserMapsDuplicateUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{
		Code:       "23505",
		Constraint: "users_username_key",
	})

	repo := NewPostgresUserRepository(db, nil)
	err = repo.Create(context.Background(), &domain.User{
		Name: "Alice", Email: "alice@example.com", Username: "alice",
	})

	var dup *domain.DuplicateError
	if !errors.As(err, &dup) || dup.Field != "username" {
		t.Fatalf("expected username duplicate, got %v", err)
	}
}

func TestGetUserByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE email").
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewPostgresUserRepository(db, nil)
	_, err = repo.GetByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "username", "password_hash", "display_name", "avatar",
		"job_title", "department", "location", "timezone", "language", "phone_number",
		"role", "is_active", "last_login", "preferences", "grants", "created_at", "updated_at",
	}).AddRow(
		"u-1", "Alice", "alice@example.com", "alice", "hash", "", "",
		"", "", "", "UTC", "en", "",
		"member", true, nil, []byte(`{"theme":"light"}`), []byte(`[]`), now, now,
	)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").WithArgs("u-1").WillReturnRows(rows)

	repo := NewPostgresUserRepository(db, nil)
	user, err := repo.GetByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if user.Email != "alice@example.com" || user.Preferences.Theme != "light" {
		t.Fatalf("unexpected user: %+v", user)
	}
}
