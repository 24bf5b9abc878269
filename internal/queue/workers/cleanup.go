package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/voicevault/backend/internal/queue"
)

// CleanupWorker deletes staged upload files past their retention age. The
// upload pipeline never deletes anything itself; this sweep is the only thing
// standing between the staging directory and unbounded growth.
type CleanupWorker struct{}

func NewCleanupWorker() *CleanupWorker {
	return &CleanupWorker{}
}

func (w *CleanupWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.StagingCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal cleanup payload: %w", err)
	}

	retention, err := time.ParseDuration(payload.Retention)
	if err != nil {
		return fmt.Errorf("parse retention: %w", err)
	}
	if retention <= 0 {
		// Retention disabled: keep everything, matching the pre-cleanup
		// behavior of the service.
		return nil
	}

	removed, err := Sweep(payload.Dir, retention, time.Now())
	if err != nil {
		return err
	}

	slog.Info("staging cleanup complete", "dir", payload.Dir, "removed", removed)
	return nil
}

// Sweep removes regular files in dir whose modification time is older than
// retention relative to now, and reports how many were removed.
func Sweep(dir string, retention time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read staging dir: %w", err)
	}

	cutoff := now.Add(-retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			slog.Warn("failed to remove staged file", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
