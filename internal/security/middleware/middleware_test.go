package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/taskboard/internal/security/auth"
	"github.com/yourorg/taskboard/internal/security/ratelimit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	tm := auth.NewTokenManager("secret", "taskboard")
	var hit bool
	h := JWTMiddleware(tm, testLogger())(okHandler(&hit))

	req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if hit {
		t.Fatalf("handler must not run without a token")
	}
}

func TestJWTMiddlewareRejectsBadToken(t *testing.T) {
	tm := auth.NewTokenManager("secret", "taskboard")
	var hit bool
	h := JWTMiddleware(tm, testLogger())(okHandler(&hit))

	req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddlewareAttachesIdentity(t *testing.T) {
	tm := auth.NewTokenManager("secret", "taskboard")
	token, err := tm.GenerateToken("user-1", "alice@example.com", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var gotUser string
	h := JWTMiddleware(tm, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if gotUser != "user-1" {
		t.Fatalf("expected user id in context, got %q", gotUser)
	}
}

func TestJWTMiddlewareSkipsPublicPaths(t *testing.T) {
	tm := auth.NewTokenManager("secret", "taskboard")

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/api/auth/register", "/api/auth/login", "/uploads/abc.txt"} {
		var hit bool
		h := JWTMiddleware(tm, testLogger())(okHandler(&hit))

		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if !hit {
			t.Fatalf("public path %s must skip auth", path)
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(1, time.Minute)
	defer limiter.Stop()

	tm := auth.NewTokenManager("secret", "taskboard")
	token, err := tm.GenerateToken("user-1", "alice@example.com", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var hit bool
	h := JWTMiddleware(tm, testLogger())(RateLimitMiddleware(limiter, testLogger())(okHandler(&hit)))

	req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be throttled, got %d", rec.Code)
	}
}

func TestRateLimitMiddlewareThrottlesLoginPerAddress(t *testing.T) {
	limiter := ratelimit.NewLimiter(1000, time.Minute)
	defer limiter.Stop()

	var hit bool
	h := RateLimitMiddleware(limiter, testLogger())(okHandler(&hit))

	for i := 0; i < strictAuthLimit; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:51234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after %d login attempts, got %d", strictAuthLimit, rec.Code)
	}

	// A different address has its own bucket.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "203.0.113.8:51234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("other address should pass, got %d", rec.Code)
	}
}

func TestValidateJSONContentType(t *testing.T) {
	var hit bool
	h := ValidateJSONContentType(testLogger())(okHandler(&hit))

	req := httptest.NewRequest(http.MethodPost, "/api/board", nil)
	req.ContentLength = 10
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/board", nil)
	req.ContentLength = 10
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("json body should pass, got %d", rec.Code)
	}

	// Multipart uploads are exempt.
	req = httptest.NewRequest(http.MethodPost, "/api/cards/c-1/attachment", nil)
	req.ContentLength = 10
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("multipart should pass, got %d", rec.Code)
	}
}
