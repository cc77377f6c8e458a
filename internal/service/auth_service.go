package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/security/auth"
)

// Tokens are issued for seven days.
const tokenLifetime = 7 * 24 * time.Hour

// AuthService handles registration, login, and current-user lookup.
type AuthService struct {
	users  domain.UserRepository
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// AuthResult carries the user and a signed bearer token.
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// RegisterInput carries the register request fields.
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// Register creates a new account. Email and username are unique; the
// conflicting field is named in the error message.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.E(domain.ErrValidation, "Name, email, and password are required")
	}

	if existing, err := s.users.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, domain.E(domain.ErrValidation, "User with this email already exists")
	}
	if in.Username != "" {
		if existing, err := s.users.GetByUsername(ctx, in.Username); err == nil && existing != nil {
			return nil, domain.E(domain.ErrValidation, "Username is already taken")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	user := &domain.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Timezone:     "UTC",
		Language:     "en",
		Role:         domain.RoleUser,
		IsActive:     true,
		Preferences:  domain.DefaultPreferences(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		var dup *domain.DuplicateError
		if errors.As(err, &dup) {
			// Races between the existence probe and the insert land here;
			// the storage layer names the conflicting field.
			return nil, domain.E(domain.ErrValidation, titleCase(dup.Field)+" already exists")
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, tokenLifetime)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates by email and password. The error never reveals
// whether the email exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.E(domain.ErrUnauthorized, "Invalid Credentials")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Info("login attempt with unknown email", slog.String("email", email))
		return nil, domain.E(domain.ErrUnauthorized, "Invalid Credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		return nil, domain.E(domain.ErrUnauthorized, "Invalid Credentials")
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		// Login still succeeds; last-login is best effort.
		s.logger.Warn("failed to record last login", slog.String("error", err.Error()))
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, tokenLifetime)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Me returns the authenticated user's record.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.E(domain.ErrUnauthorized, "User not found")
	}
	return user, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
