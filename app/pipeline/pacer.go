package pipeline

import (
	"context"
	"time"
)

// Pacer decides how long to wait between two remote calls.
type Pacer interface {
	Pause(ctx context.Context) error
}

// FixedDelay waits the same amount of time after every item.
type FixedDelay time.Duration

func (d FixedDelay) Pause(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
