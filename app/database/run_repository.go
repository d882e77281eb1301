package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lysyi3m/pin-drip/app/pipeline"
)

// Fixed width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type RunRepo struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// RecordRun stores a run and its item attempts.
func (r *RunRepo) RecordRun(ctx context.Context, result pipeline.RunResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, outcome, attempted, published, started_at, finished_at, scan_error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, result.RunID, string(result.Outcome), result.Attempted, result.Published,
		formatTime(result.StartedAt), formatTime(result.FinishedAt), result.ScanError)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, item := range result.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO attempts (run_id, position, filename, title, published, pin_id, archived, archive_path, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, result.RunID, i, item.Name, item.Title, item.Published, item.PinID, item.Archived, item.ArchivePath, item.Error)
		if err != nil {
			return fmt.Errorf("failed to insert attempt for %s: %w", item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// GetRecentRuns returns the latest runs, newest first, with their attempts.
func (r *RunRepo) GetRecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, outcome, attempted, published, started_at, finished_at, scan_error
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finishedAt string
		if err := rows.Scan(&run.ID, &run.Outcome, &run.Attempted, &run.Published, &startedAt, &finishedAt, &run.ScanError); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt = parseTime(startedAt)
		run.FinishedAt = parseTime(finishedAt)
		run.Attempts = []Attempt{}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	rows.Close()

	// Attempts are loaded after the runs cursor is closed; the pool holds a
	// single connection.
	for i := range runs {
		attempts, err := r.getAttempts(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Attempts = attempts
	}

	return runs, nil
}

// GetFailedAttemptCounts returns, per file name, how many attempts failed to
// publish. Files that keep failing stay in the queue and are retried on every
// run; this makes them visible.
func (r *RunRepo) GetFailedAttemptCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT filename, COUNT(*)
		FROM attempts
		WHERE published = 0
		GROUP BY filename
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed attempts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var filename string
		var count int
		if err := rows.Scan(&filename, &count); err != nil {
			return nil, fmt.Errorf("failed to scan failed attempts: %w", err)
		}
		counts[filename] = count
	}

	return counts, rows.Err()
}

func (r *RunRepo) getAttempts(ctx context.Context, runID string) ([]Attempt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, position, filename, title, published, pin_id, archived, archive_path, error
		FROM attempts
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []Attempt{}
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.RunID, &a.Position, &a.Filename, &a.Title, &a.Published, &a.PinID, &a.Archived, &a.ArchivePath, &a.Error); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.In(time.Local)
}
