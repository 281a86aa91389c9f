// Package main is the entry point for the itinerary API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/roamline/backend/internal/config"
	"github.com/roamline/backend/internal/handler"
	"github.com/roamline/backend/internal/middleware"
	"github.com/roamline/backend/internal/realtime"
	"github.com/roamline/backend/internal/repo"
	"github.com/roamline/backend/internal/service"
	"github.com/roamline/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Migrations -------------------------------------------------------
	// Apply the embedded migrations on boot so the schema always matches
	// the binary. goose tracks applied versions; a no-op boot is cheap.
	if err := migrateUp(cfg.DatabaseURL); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// --- Real-time fabric -------------------------------------------------
	// Registry tracks which connections view which trip; the broadcaster
	// fans mutation events out to them. With REDIS_URL set, events travel
	// via Redis pub/sub so multiple API nodes share one broadcast domain;
	// otherwise they loop back in-process.
	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry)

	busCtx, stopBus := context.WithCancel(context.Background())
	defer stopBus()

	var bus service.EventPublisher
	if cfg.RedisURL != "" {
		redisBus, err := realtime.NewRedisBus(cfg.RedisURL, broadcaster, logger)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisBus.Close()
		go func() {
			if err := redisBus.Run(busCtx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("redis bus stopped", "error", err)
			}
		}()
		bus = redisBus
		slog.Info("broadcast fabric: redis pub/sub")
	} else {
		bus = realtime.NewLocalBus(broadcaster)
		slog.Info("broadcast fabric: in-process")
	}

	// --- Services ---------------------------------------------------------
	tripRepo := repo.NewTripRepo(pool)
	activityRepo := repo.NewActivityRepo(pool)
	tripSvc := service.NewTripService(tripRepo)
	activitySvc := service.NewActivityService(tripRepo, activityRepo, bus, logger)

	hub := realtime.NewHub(registry, logger, originChecker(cfg.CORSOrigins))

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(1 << 20)) // 1 MiB

	srvHandler := handler.NewServer(tripSvc, activitySvc, hub)
	r.Mount("/", srvHandler.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// No WriteTimeout: it would sever long-lived websocket connections.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")
	stopBus()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrateUp applies all embedded migrations using the database/sql pgx driver.
func migrateUp(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}

// originChecker builds the websocket upgrade origin check from the CORS
// allowlist. Requests without an Origin header (non-browser clients such as
// the viewer CLI) are always allowed.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}
