package tasks

import (
	"context"

	"github.com/lysyi3m/pin-drip/app/pipeline"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background publishing runs.
// Example usage:
//
//	scheduler := NewScheduler(runner, interval, runOnStart)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewPublishRunTask(TriggerAPI, runner))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// RunInterface is a serialized pipeline trigger.
type RunInterface interface {
	Run(ctx context.Context) (pipeline.RunResult, error)
}

type ConfigProvider interface {
	PipelineConfig(ctx context.Context) (pipeline.Config, error)
}

type Coordinator interface {
	Run(ctx context.Context, cfg pipeline.Config) pipeline.RunResult
}

var (
	_ Coordinator  = (*pipeline.Coordinator)(nil)
	_ RunInterface = (*Runner)(nil)
)
