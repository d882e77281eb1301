package pipeline

import (
	"errors"
	"fmt"
	"time"
)

const DefaultDailyLimit = 5

var ErrMissingConfiguration = errors.New("missing configuration (token or board id)")

// Config is the explicit per-run configuration snapshot.
type Config struct {
	AccessToken string
	BoardID     string
	WebsiteURL  string
	TitlePrefix string
	DailyLimit  int
	QueueDir    string
	ArchiveDir  string
}

// Limit returns the per-run cap, falling back to the default for
// non-positive values.
func (c Config) Limit() int {
	if c.DailyLimit <= 0 {
		return DefaultDailyLimit
	}
	return c.DailyLimit
}

// Validate checks the preconditions for calling the remote API.
func (c Config) Validate() error {
	if c.AccessToken == "" || c.BoardID == "" {
		return ErrMissingConfiguration
	}
	return nil
}

type Outcome string

const (
	OutcomeNoWork      Outcome = "no_work"
	OutcomeSuccess     Outcome = "success"
	OutcomeConfigError Outcome = "config_error"
)

type ItemResult struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Published   bool   `json:"published"`
	PinID       string `json:"pin_id,omitempty"`
	Archived    bool   `json:"archived"`
	ArchivePath string `json:"archive_path,omitempty"`
	Error       string `json:"error,omitempty"`
}

type RunResult struct {
	RunID      string       `json:"run_id"`
	Outcome    Outcome      `json:"outcome"`
	Attempted  int          `json:"attempted"`
	Published  int          `json:"published"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Items      []ItemResult `json:"items"`
	ScanError  string       `json:"scan_error,omitempty"` // queue directory could not be read
}

const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Summary is the outcome shape handed to whoever triggered the run.
type Summary struct {
	Status  string `json:"status"`
	Posted  int    `json:"posted"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

func (r RunResult) Summary() Summary {
	switch r.Outcome {
	case OutcomeNoWork:
		if r.ScanError != "" {
			return Summary{Status: StatusWarning, Message: "No images in input folder: " + r.ScanError}
		}
		return Summary{Status: StatusWarning, Message: "No images in input folder"}
	case OutcomeConfigError:
		return Summary{Status: StatusError, Message: "Missing Configuration (Token or Board ID)"}
	default:
		return Summary{
			Status:  StatusSuccess,
			Posted:  r.Published,
			Total:   r.Attempted,
			Message: fmt.Sprintf("Successfully posted %d of %d pins", r.Published, r.Attempted),
		}
	}
}
