package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/quotevault/internal/handler"
	"github.com/yourorg/quotevault/internal/importer"
	"github.com/yourorg/quotevault/internal/infrastructure/logger"
	"github.com/yourorg/quotevault/internal/observability/metrics"
	"github.com/yourorg/quotevault/internal/observability/tracing"
	"github.com/yourorg/quotevault/internal/repository"
	"github.com/yourorg/quotevault/internal/security"
	"github.com/yourorg/quotevault/internal/security/audit"
	"github.com/yourorg/quotevault/internal/security/auth"
	"github.com/yourorg/quotevault/internal/security/middleware"
	"github.com/yourorg/quotevault/internal/security/ratelimit"
	"github.com/yourorg/quotevault/internal/service"
	"github.com/yourorg/quotevault/internal/worker"
	"github.com/yourorg/quotevault/pkg/config"
	"github.com/yourorg/quotevault/pkg/database"
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
	log.Info("starting quotevault server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "quotevault", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Open the store, bootstrapping directory/file/schema on first run
	pool, err := database.NewConnectionPool(ctx, &database.Config{Path: cfg.DatabasePath}, log)
	if err != nil {
		log.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Initialize repository and services
	quoteRepo := repository.NewSQLiteQuoteRepository(pool.GetDB(), log)
	quoteService := service.NewQuoteService(quoteRepo, log)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenIssuer, cfg.TokenTTL)
	authService, err := service.NewAuthService(tokenManager, cfg.RegistrationKey, log)
	if err != nil {
		log.Error("failed to initialize auth service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	auditLogger := audit.NewLogger(log)
	gate := security.NewGate(quoteRepo, tokenManager, auditLogger, log)

	// 6. Seed the catalog from CSV on first run only
	seeded, err := importer.New(quoteRepo, log).SeedIfEmpty(ctx, cfg.SeedCSVPath)
	if err != nil {
		log.Error("seed import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if seeded > 0 {
		log.Info("seeded catalog", slog.Int("quotes", seeded))
	}

	// 7. Initialize handlers
	listHandler := handler.NewListQuotesHandler(quoteService, log)
	getHandler := handler.NewGetQuoteHandler(quoteService, log)
	randomHandler := handler.NewRandomQuoteHandler(quoteService, log)
	createHandler := handler.NewCreateQuoteHandler(gate, log)
	updateHandler := handler.NewUpdateQuoteHandler(gate, log)
	deleteHandler := handler.NewDeleteQuoteHandler(gate, log)
	registerHandler := handler.NewRegisterHandler(authService, auditLogger, log)
	healthHandler := handler.NewHealthHandler(pool, log)

	// 8. Setup HTTP routes
	mux := http.NewServeMux()
	mux.Handle("POST /auth", registerHandler)
	mux.Handle("GET /api/v1/quotes", listHandler)
	mux.Handle("POST /api/v1/quotes", createHandler)
	mux.Handle("GET /api/v1/quotes/random", randomHandler)
	mux.Handle("GET /api/v1/quotes/{id}", getHandler)
	mux.Handle("PUT /api/v1/quotes/{id}", updateHandler)
	mux.Handle("DELETE /api/v1/quotes/{id}", deleteHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	// Background catalog-size sampling for the /metrics gauge
	statsWorker := worker.NewStatsWorker(quoteRepo, log, time.Minute)
	go statsWorker.Start(ctx)

	// Chain middleware: request ID -> rate limit -> metrics -> CORS -> mux
	rootHandler := middleware.RequestIDMiddleware(log)(
		middleware.RateLimitMiddleware(rateLimiter, log)(
			metrics.HTTPMetricsMiddleware(handlerWithCORS),
		),
	)

	// 9. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "quotevault"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "bearer"),
		slog.Duration("token_ttl", cfg.TokenTTL),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
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
