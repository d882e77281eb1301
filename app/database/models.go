package database

import (
	"time"
)

type Run struct {
	ID         string    `json:"id"`
	Outcome    string    `json:"outcome"`
	Attempted  int       `json:"attempted"`
	Published  int       `json:"published"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	ScanError  string    `json:"scan_error,omitempty"`
	Attempts   []Attempt `json:"attempts"`
}

type Attempt struct {
	RunID       string `json:"run_id"`
	Position    int    `json:"position"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	Published   bool   `json:"published"`
	PinID       string `json:"pin_id,omitempty"`
	Archived    bool   `json:"archived"`
	ArchivePath string `json:"archive_path,omitempty"`
	Error       string `json:"error,omitempty"`
}
