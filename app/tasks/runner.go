package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofrs/flock"

	"github.com/lysyi3m/pin-drip/app/pipeline"
)

var ErrRunInProgress = errors.New("run already in progress")

// Runner is the single entry point for starting a run. Overlapping triggers
// in this process or in another process sharing the lock file are rejected
// rather than queued.
type Runner struct {
	coordinator Coordinator
	settings    ConfigProvider
	lockPath    string
	mu          sync.Mutex
}

func NewRunner(coordinator Coordinator, settings ConfigProvider, lockPath string) *Runner {
	return &Runner{
		coordinator: coordinator,
		settings:    settings,
		lockPath:    lockPath,
	}
}

func (r *Runner) Run(ctx context.Context) (pipeline.RunResult, error) {
	if !r.mu.TryLock() {
		return pipeline.RunResult{}, ErrRunInProgress
	}
	defer r.mu.Unlock()

	lock := flock.New(r.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return pipeline.RunResult{}, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return pipeline.RunResult{}, ErrRunInProgress
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("Failed to release run lock", "lock", r.lockPath, "error", err)
		}
	}()

	cfg, err := r.settings.PipelineConfig(ctx)
	if err != nil {
		return pipeline.RunResult{}, fmt.Errorf("failed to load run configuration: %w", err)
	}

	return r.coordinator.Run(ctx, cfg), nil
}
