package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yourorg/taskboard/internal/security/audit"
	"github.com/yourorg/taskboard/internal/security/auth"
	"github.com/yourorg/taskboard/internal/security/ratelimit"
)

type ClaimsContextKey struct{}
type UserContextKey struct{}

// publicPath reports whether a request path skips authentication entirely.
func publicPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics" ||
		path == "/api/auth/register" || path == "/api/auth/login" ||
		strings.HasPrefix(path, "/uploads/")
}

// JWTMiddleware validates the bearer token and attaches the requester
// identity to the context. Handlers pass it explicitly into services.
func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"message":"Unauthorized: No user info"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"message":"Unauthorized: No user info"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				log.Debug("token rejected", slog.String("error", err.Error()))
				http.Error(w, `{"message":"Invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			ctx = context.WithValue(ctx, UserContextKey{}, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Credential endpoints get a tighter per-address limit than the per-user
// default, since they are reachable without a token.
const (
	strictAuthLimit  = 10
	strictAuthWindow = time.Minute
)

func authPath(path string) bool {
	return path == "/api/auth/register" || path == "/api/auth/login"
}

// RateLimitMiddleware throttles authenticated requests per user. Register
// and login, which carry no identity yet, are throttled per remote address
// on the strict tier instead.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authPath(r.URL.Path) {
				addr := r.RemoteAddr
				if host, _, err := net.SplitHostPort(addr); err == nil {
					addr = host
				}
				if !limiter.AllowStrict(addr, strictAuthLimit, strictAuthWindow) {
					log.Warn("rate limit exceeded", slog.String("remote_addr", addr), slog.String("path", r.URL.Path))
					http.Error(w, `{"message":"rate limit exceeded"}`, http.StatusTooManyRequests)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if publicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			userID := GetUserIDFromContext(r.Context())
			if !limiter.Allow(userID) {
				log.Warn("rate limit exceeded", slog.String("user_id", userID))
				http.Error(w, `{"message":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records every mutating API request with the requester
// identity before the handler runs.
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/") {
				auditLog.LogRequest(r.Context(), GetUserIDFromContext(r.Context()), r.Method, r.URL.Path)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ValidateJSONContentType ensures bodied POST/PUT requests carry a JSON
// content type. Multipart uploads are exempt.
func ValidateJSONContentType(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if strings.Contains(contentType, "multipart/form-data") {
				next.ServeHTTP(w, r)
				return
			}

			if !strings.Contains(contentType, "application/json") {
				log.Warn("invalid content type",
					slog.String("path", r.URL.Path),
					slog.String("content_type", contentType),
					slog.String("method", r.Method),
				)
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext returns the authenticated user id, or "".
func GetUserIDFromContext(ctx context.Context) string {
	if u := ctx.Value(UserContextKey{}); u != nil {
		return u.(string)
	}
	return ""
}

// GetClaimsFromContext returns the token claims, or nil.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
