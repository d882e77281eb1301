package api

import (
	"context"
	"sync"
	"time"

	"github.com/lysyi3m/pin-drip/app/database"
	"github.com/lysyi3m/pin-drip/app/pinterest"
	"github.com/lysyi3m/pin-drip/app/settings"
	"github.com/lysyi3m/pin-drip/app/tasks"
)

type SettingsStore interface {
	Snapshot(ctx context.Context) (map[string]string, error)
	Redacted(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, values map[string]string) error
}

var _ SettingsStore = (*settings.Store)(nil)

type AccountFetcher interface {
	UserAccount(ctx context.Context, accessToken string) (*pinterest.Account, error)
}

var _ AccountFetcher = (*pinterest.Client)(nil)

type Handler struct {
	runner       tasks.RunInterface
	settings     SettingsStore
	runRepo      database.RunRepository
	accounts     AccountFetcher
	oauthBaseURL string
	apiBaseURL   string
	version      string

	statesMu sync.Mutex
	states   map[string]time.Time
}

// Summary-shaped error bodies keep every run response uniform.
type runResponse struct {
	Status  string `json:"status"`
	Posted  int    `json:"posted"`
	Total   int    `json:"total"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

type queueItem struct {
	Name           string `json:"name"`
	ContentType    string `json:"content_type"`
	HasSidecar     bool   `json:"has_sidecar"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Link           string `json:"link"`
	NextRun        bool   `json:"next_run"`
	FailedAttempts int    `json:"failed_attempts"`
}
