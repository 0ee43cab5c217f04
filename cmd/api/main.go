package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agence-dashboard/config"
	"agence-dashboard/internal/delivery/http/middleware"
	v1 "agence-dashboard/internal/delivery/http/v1"
	"agence-dashboard/internal/domain"
	"agence-dashboard/internal/infrastructure/cache"
	"agence-dashboard/internal/infrastructure/upstream"
	"agence-dashboard/internal/repository/memory"
	"agence-dashboard/internal/repository/postgres"
	"agence-dashboard/internal/usecase"
	"agence-dashboard/pkg/logger"
	"agence-dashboard/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

const serviceName = "agence-dashboard"

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)

	// Shared cache: published catalogs, workspaces and, without a database, sessions.
	// Default expiration 30m, cleanup every 10m
	memCache := cache.NewMemoryCache(30*time.Minute, 10*time.Minute)

	// Session store: Postgres when configured, in-memory otherwise
	var (
		pgxPool     *pgxpool.Pool
		sessionRepo domain.SessionRepository
		db          v1.Pinger
	)
	if cfg.DBUrl != "" {
		var err error
		pgxPool, err = postgres.NewPgxPool(context.Background(), cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		if err := postgres.EnsureSchema(context.Background(), pgxPool); err != nil {
			logger.Fatal().Err(err).Msg("Failed to prepare session schema")
		}
		logger.Info().Msg("Sessions persisted in PostgreSQL")
		sessionRepo = postgres.NewSessionRepository(pgxPool)
		db = pgxPool
	} else {
		logger.Warn().Msg("DB_DSN not set, sessions kept in memory and lost on restart")
		sessionRepo = memory.NewSessionRepository(memCache)
	}

	// Shipping API client
	shippingAPI := upstream.New(cfg.UpstreamURL, cfg.UpstreamTimeout)

	// --- Modules Initialization ---
	workspaces := usecase.NewWorkspaceManager(shippingAPI, memCache, cfg)
	sessionUC := usecase.NewSessionUsecase(sessionRepo, workspaces, cfg.SessionTTL)
	expeditionUC := usecase.NewExpeditionUsecase(shippingAPI)

	sessionHandler := v1.NewSessionHandler(sessionUC, !cfg.IsDevelopment())
	tariffHandler := v1.NewTariffHandler(sessionUC)
	groupageHandler := v1.NewGroupageHandler(sessionUC)
	expeditionHandler := v1.NewExpeditionHandler(expeditionUC)
	healthHandler := v1.NewHealthHandler(db)

	// Set up Router
	mux := http.NewServeMux()

	authMiddleware := middleware.NewAuthMiddleware(sessionUC)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}
	// Must chain: Auth -> Role -> Handler
	managerOnly := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(middleware.ManagerMiddleware(h))
	}
	expeditionRole := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(middleware.ExpeditionMiddleware(h))
	}

	// Session
	mux.HandleFunc("POST /api/v1/session", sessionHandler.Open)
	mux.Handle("GET /api/v1/session", protected(sessionHandler.Current))
	mux.Handle("DELETE /api/v1/session", protected(sessionHandler.Close))

	// Simple tariffs
	mux.Handle("GET /api/v1/tariffs/simple", protected(tariffHandler.Get))
	mux.Handle("POST /api/v1/tariffs/simple/reload", protected(tariffHandler.Reload))
	mux.Handle("POST /api/v1/tariffs/simple/select", protected(tariffHandler.Select))
	mux.Handle("PATCH /api/v1/tariffs/simple/staging/zones/{zoneId}", protected(tariffHandler.UpdateZoneMarkup))
	mux.Handle("DELETE /api/v1/tariffs/simple/staging", protected(tariffHandler.CancelEditing))
	mux.Handle("POST /api/v1/tariffs/simple/save", managerOnly(tariffHandler.Save))
	mux.Handle("DELETE /api/v1/tariffs/simple/{indice}", managerOnly(tariffHandler.Delete))
	mux.Handle("PATCH /api/v1/tariffs/simple/{indice}/status", managerOnly(tariffHandler.ToggleStatus))

	// Groupage tariffs
	mux.Handle("GET /api/v1/tariffs/groupage", protected(groupageHandler.Get))
	mux.Handle("POST /api/v1/tariffs/groupage/reload", protected(groupageHandler.Reload))
	mux.Handle("POST /api/v1/tariffs/groupage/import", protected(groupageHandler.Import))
	mux.Handle("POST /api/v1/tariffs/groupage", managerOnly(groupageHandler.Create))
	mux.Handle("PUT /api/v1/tariffs/groupage/{id}", managerOnly(groupageHandler.Update))
	mux.Handle("DELETE /api/v1/tariffs/groupage/{id}", managerOnly(groupageHandler.Delete))
	mux.Handle("PATCH /api/v1/tariffs/groupage/{id}/status", managerOnly(groupageHandler.ToggleStatus))

	// Expeditions
	mux.Handle("POST /api/v1/expeditions/simulate", protected(expeditionHandler.Simulate))
	mux.Handle("POST /api/v1/expeditions", expeditionRole(expeditionHandler.Create))
	mux.Handle("GET /api/v1/expeditions", protected(expeditionHandler.List))

	// Health Check
	mux.HandleFunc("GET /api/v1/health", healthHandler.Check)
	mux.HandleFunc("GET /health", healthHandler.Check) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Cleanup every minute, forget idle visitors after 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
	)

	// Apply CORS, Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart(serviceName, cfg.Env, cfg.Port)

	// Wait for interrupt signal via channel
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	workspaces.DiscardAll()
	logger.Debug().Msg("Workspaces discarded")
	if pgxPool != nil {
		pgxPool.Close()
	}

	logger.ServiceStop(serviceName)
}
