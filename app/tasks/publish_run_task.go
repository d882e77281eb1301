package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/pin-drip/app/pipeline"
)

type PublishRunTask struct {
	Task
	runner RunInterface
	Result *pipeline.RunResult
}

func NewPublishRunTask(trigger Trigger, runner RunInterface) *PublishRunTask {
	return &PublishRunTask{
		Task:   NewTask(TaskTypePublishRun, trigger),
		runner: runner,
	}
}

func (t *PublishRunTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run pipeline: %w", err)
	}
	t.Result = &result

	if result.Outcome == pipeline.OutcomeConfigError {
		slog.Warn("Publish run skipped", "trigger", t.Trigger, "reason", result.Summary().Message)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"trigger", t.Trigger,
		"run_id", result.RunID,
		"duration", t.GetDuration(),
		"outcome", result.Outcome,
		"attempted", result.Attempted,
		"published", result.Published)

	return nil
}
