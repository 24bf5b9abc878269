package main

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/voicevault/backend/internal/config"
	"github.com/voicevault/backend/internal/queue"
	"github.com/voicevault/backend/internal/queue/workers"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
	})

	registry := queue.NewHandlersRegistry()
	cleanupWorker := workers.NewCleanupWorker()
	registry.Register(queue.TypeStagingCleanup, asynq.HandlerFunc(cleanupWorker.ProcessTask))

	// Periodic sweep of the staging directory. With retention 0 the task is a
	// no-op and staged files live forever, as they always have.
	scheduler := asynq.NewScheduler(redisOpt, nil)
	payload, err := json.Marshal(queue.StagingCleanupPayload{
		Dir:       cfg.Upload.Dir,
		Retention: cfg.Upload.Retention.String(),
	})
	if err != nil {
		slog.Error("failed to marshal cleanup payload", "error", err)
		os.Exit(1)
	}
	if _, err := scheduler.Register("@every 10m", asynq.NewTask(queue.TypeStagingCleanup, payload)); err != nil {
		slog.Error("failed to register cleanup schedule", "error", err)
		os.Exit(1)
	}

	slog.Info("starting worker", "staging_dir", cfg.Upload.Dir, "retention", cfg.Upload.Retention.String())

	var g errgroup.Group
	g.Go(func() error { return srv.Run(registry.Mux()) })
	g.Go(func() error { return scheduler.Run() })

	if err := g.Wait(); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
