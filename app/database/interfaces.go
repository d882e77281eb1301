package database

import (
	"context"

	"github.com/lysyi3m/pin-drip/app/pipeline"
)

type SettingsRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	SetMany(ctx context.Context, values map[string]string) error
}

type RunRepository interface {
	pipeline.Recorder

	GetRecentRuns(ctx context.Context, limit int) ([]Run, error)
	GetFailedAttemptCounts(ctx context.Context) (map[string]int, error)
}

var (
	_ SettingsRepository = (*SettingsRepo)(nil)
	_ RunRepository      = (*RunRepo)(nil)
)
