package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/taskboard/internal/handler"
	"github.com/yourorg/taskboard/internal/infrastructure/logger"
	"github.com/yourorg/taskboard/internal/infrastructure/redis"
	"github.com/yourorg/taskboard/internal/observability/metrics"
	"github.com/yourorg/taskboard/internal/observability/tracing"
	"github.com/yourorg/taskboard/internal/repository"
	"github.com/yourorg/taskboard/internal/security/audit"
	"github.com/yourorg/taskboard/internal/security/auth"
	"github.com/yourorg/taskboard/internal/security/middleware"
	"github.com/yourorg/taskboard/internal/security/ratelimit"
	"github.com/yourorg/taskboard/internal/service"
	"github.com/yourorg/taskboard/internal/upload"
	"github.com/yourorg/taskboard/pkg/cache"
	"github.com/yourorg/taskboard/pkg/config"
	"github.com/yourorg/taskboard/pkg/database"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting taskboard server", slog.String("environment", cfg.Environment))

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(context.Background(), log, "taskboard", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to Postgres
	db, err := database.NewConnectionPool(context.Background(), cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	// 5. Project cache: Redis when configured, in-process otherwise
	var projectCache cache.Store
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL, log)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		projectCache = redisClient
	} else {
		log.Info("REDIS_URL not set, using in-process project cache")
		projectCache = cache.NewMemory()
	}

	// 6. Initialize repositories
	userRepo := repository.NewPostgresUserRepository(db.GetDB(), log)
	projectRepo := repository.NewPostgresProjectRepository(db.GetDB(), log)
	boardRepo := repository.NewPostgresBoardRepository(db.GetDB(), log)
	listRepo := repository.NewPostgresListRepository(db.GetDB(), log)
	cardRepo := repository.NewPostgresCardRepository(db.GetDB(), log)
	teamRepo := repository.NewPostgresTeamRepository(db.GetDB(), log)

	// 7. Attachment storage on local disk
	uploadStore, err := upload.NewStore(cfg.UploadDir, cfg.BaseURL, int(cfg.MaxUploadSizeMB), cfg.MaxAttachmentsPerCard, log)
	if err != nil {
		log.Error("failed to initialize upload store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 8. Security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "taskboard")
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	auditLogger := audit.NewLogger(log)

	// 9. Initialize services
	authService := service.NewAuthService(userRepo, tokenManager, log)
	projectService := service.NewProjectService(projectRepo, userRepo, projectCache, log)
	boardService := service.NewBoardService(boardRepo, projectRepo, log)
	listService := service.NewListService(listRepo, boardRepo, log)
	cardService := service.NewCardService(cardRepo, listRepo, boardRepo, userRepo, uploadStore, log)
	teamService := service.NewTeamService(teamRepo, userRepo, log)

	// 10. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	boardHandler := handler.NewBoardHandler(boardService, log)
	listHandler := handler.NewListHandler(listService, log)
	cardHandler := handler.NewCardHandler(cardService, log)
	teamHandler := handler.NewTeamHandler(teamService, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, log)

	// 11. Setup HTTP routes
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)

	mux.HandleFunc("POST /api/projects", projectHandler.Create)
	mux.HandleFunc("GET /api/projects", projectHandler.List)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.Get)
	mux.HandleFunc("PUT /api/projects/{id}", projectHandler.Update)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.Delete)
	mux.HandleFunc("POST /api/projects/{id}/updates", projectHandler.AddUpdate)
	mux.HandleFunc("GET /api/projects/{id}/updates", projectHandler.GetUpdates)

	mux.HandleFunc("POST /api/board", boardHandler.Create)
	mux.HandleFunc("GET /api/board", boardHandler.List)
	mux.HandleFunc("GET /api/board/{id}", boardHandler.Get)
	mux.HandleFunc("PUT /api/board/{id}", boardHandler.Update)
	mux.HandleFunc("DELETE /api/board/{id}", boardHandler.Delete)
	mux.HandleFunc("POST /api/board/{boardId}/lists", listHandler.CreateForBoard)
	// /api/board/project/{projectId} and /api/board/{boardId}/lists are
	// ambiguous to the mux, so dispatch on the literal segment here.
	mux.HandleFunc("GET /api/board/{first}/{second}", func(w http.ResponseWriter, r *http.Request) {
		first, second := r.PathValue("first"), r.PathValue("second")
		switch {
		case first == "project":
			r.SetPathValue("projectId", second)
			boardHandler.ListByProject(w, r)
		case second == "lists":
			r.SetPathValue("boardId", first)
			listHandler.ListByBoard(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	mux.HandleFunc("POST /api/lists", listHandler.Create)
	mux.HandleFunc("GET /api/lists/board/{boardId}", listHandler.ListByBoard)
	mux.HandleFunc("PUT /api/lists/{id}", listHandler.Update)
	mux.HandleFunc("DELETE /api/lists/{id}", listHandler.Delete)

	mux.HandleFunc("POST /api/cards/list/{listId}", cardHandler.Create)
	mux.HandleFunc("GET /api/cards/list/{listId}", cardHandler.ListByList)
	mux.HandleFunc("PUT /api/cards/{id}", cardHandler.Update)
	mux.HandleFunc("PUT /api/cards/{id}/move", cardHandler.Move)
	mux.HandleFunc("DELETE /api/cards/{id}", cardHandler.Delete)
	mux.HandleFunc("POST /api/cards/{id}/attachment", cardHandler.UploadAttachment)
	mux.HandleFunc("DELETE /api/cards/{id}/attachment/{attachmentId}", cardHandler.DeleteAttachment)

	mux.HandleFunc("POST /api/teams", teamHandler.Create)
	mux.HandleFunc("GET /api/teams", teamHandler.List)

	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// Attachments served straight from disk
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadStore.Dir()))))

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> JWT -> rate limit ->
	// audit -> content type -> CORS -> mux
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.JWTMiddleware(tokenManager, log)(
				middleware.RateLimitMiddleware(rateLimiter, log)(
					middleware.AuditMiddleware(auditLogger)(
						middleware.ValidateJSONContentType(log)(handlerWithCORS),
					),
				),
			),
		),
		log,
	)

	// 12. Start HTTP server with tracing instrumentation
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "taskboard"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitRequests),
		slog.Int("rate_limit_window_seconds", cfg.RateLimitWindowSec),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	rateLimiter.Stop()
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
