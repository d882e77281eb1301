package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/pin-drip/app/queue"
)

// Recorder persists the outcome of a run.
type Recorder interface {
	RecordRun(ctx context.Context, result RunResult) error
}

// Coordinator runs scan, resolve, publish and archive for one invocation. It
// is not safe for overlapping runs on the same queue; callers serialize.
type Coordinator struct {
	publisher *Publisher
	recorder  Recorder
	now       func() time.Time
}

func NewCoordinator(client PinCreator, pacer Pacer, recorder Recorder) *Coordinator {
	return &Coordinator{
		publisher: NewPublisher(client, pacer),
		recorder:  recorder,
		now:       time.Now,
	}
}

// Run never fails on remote or per-item errors; those are reported in the
// result. Only missing credentials produce a non-success outcome.
func (c *Coordinator) Run(ctx context.Context, cfg Config) RunResult {
	result := RunResult{
		RunID:     uuid.NewString(),
		StartedAt: c.now(),
		Items:     []ItemResult{},
	}
	logger := slog.With("run_id", result.RunID)

	items, err := queue.Scan(cfg.QueueDir)
	if err != nil {
		logger.Error("Failed to scan queue, reporting no work", "dir", cfg.QueueDir, "error", err)
		result.ScanError = err.Error()
	}

	selected := Select(items, cfg.Limit())
	if len(selected) == 0 {
		logger.Info("No images in queue", "dir", cfg.QueueDir)
		return c.finish(ctx, result, OutcomeNoWork)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("Run aborted", "error", err, "queued", len(items))
		return c.finish(ctx, result, OutcomeConfigError)
	}

	logger.Info("Publishing", "queued", len(items), "selected", len(selected), "limit", cfg.Limit(), "board_id", cfg.BoardID)

	archiver := queue.NewArchiver(cfg.ArchiveDir)
	result.Items = c.publisher.Publish(ctx, cfg, selected, func(item queue.Item, r *ItemResult) {
		path, err := archiver.Archive(item, c.now())
		if err != nil {
			// Published but still queued: the next run will post it again.
			logger.Error("Failed to archive published item", "item", item.Name, "error", err)
			r.Error = err.Error()
			return
		}
		r.Archived = true
		r.ArchivePath = path
	})

	for _, item := range result.Items {
		result.Attempted++
		if item.Published {
			result.Published++
		}
	}

	return c.finish(ctx, result, OutcomeSuccess)
}

func (c *Coordinator) finish(ctx context.Context, result RunResult, outcome Outcome) RunResult {
	result.Outcome = outcome
	result.FinishedAt = c.now()

	slog.Info("Run completed",
		"run_id", result.RunID,
		"outcome", result.Outcome,
		"attempted", result.Attempted,
		"published", result.Published,
		"duration", result.FinishedAt.Sub(result.StartedAt))

	if c.recorder != nil {
		if err := c.recorder.RecordRun(context.WithoutCancel(ctx), result); err != nil {
			slog.Error("Failed to record run", "run_id", result.RunID, "error", err)
		}
	}

	return result
}
