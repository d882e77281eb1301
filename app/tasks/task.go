package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const TaskTypePublishRun TaskType = "publish_run"

// Trigger names what asked for a run. It is only used for logging.
type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerStartup  Trigger = "startup"
	TriggerAPI      Trigger = "api"
)

// A run that keeps failing before it starts publishing (settings unreadable,
// lock held) is retried this many times by the scheduler.
const DefaultMaxRetries = 3

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetTrigger() Trigger
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

// Task carries the bookkeeping shared by every task type.
type Task struct {
	ID         string
	Type       TaskType
	Trigger    Trigger
	EnqueuedAt time.Time
	StartedAt  time.Time
	RetryCount int
	MaxRetries int
}

func NewTask(taskType TaskType, trigger Trigger) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		Trigger:    trigger,
		EnqueuedAt: time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

func (t *Task) GetID() string        { return t.ID }
func (t *Task) GetType() TaskType    { return t.Type }
func (t *Task) GetTrigger() Trigger  { return t.Trigger }
func (t *Task) GetRetryCount() int   { return t.RetryCount }
func (t *Task) GetMaxRetries() int   { return t.MaxRetries }
func (t *Task) IncrementRetryCount() { t.RetryCount++ }
func (t *Task) CanRetry() bool       { return t.RetryCount < t.MaxRetries }
func (t *Task) Start()               { t.StartedAt = time.Now() }

// GetDuration is the time since the latest Start, or zero before the first.
func (t *Task) GetDuration() time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}
	return time.Since(t.StartedAt)
}
