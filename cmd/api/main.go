package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/voicevault/backend/internal/api"
	"github.com/voicevault/backend/internal/config"
	"github.com/voicevault/backend/internal/database"
	"github.com/voicevault/backend/internal/queue"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Postgres is only a hard dependency for the pgvector backend.
	var db *pgxpool.Pool
	if cfg.Vector.Backend == "pgvector" {
		db, err = database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	// Redis connection (optional, backs the search cache)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache", "error", err)
		rdb.Close()
		rdb = nil
	} else {
		defer rdb.Close()
	}

	// Kick off a staging sweep right away so a restart clears backlog
	// instead of waiting for the worker's next scheduled run.
	if cfg.Upload.Retention > 0 {
		qc := queue.NewClient(cfg.Redis)
		defer qc.Close()
		if err := qc.EnqueueStagingCleanup(queue.StagingCleanupPayload{
			Dir:       cfg.Upload.Dir,
			Retention: cfg.Upload.Retention.String(),
		}); err != nil {
			slog.Warn("failed to enqueue startup staging cleanup", "error", err)
		}
	}

	// Setup router
	router := api.NewRouter(db, rdb, cfg)
	handler, err := router.Setup()
	if err != nil {
		slog.Error("failed to set up router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second, // translation can take minutes on long audio
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr(), "stt_backend", cfg.STT.Backend, "vector_backend", cfg.Vector.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
