// Package journal persists performed renames so they can be listed and
// undone later.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one performed rename.
type Entry struct {
	ID           int64
	RunID        string
	RenamedAt    time.Time
	OriginalPath string
	NewPath      string
	UnixSeconds  int64
}

// Journal manages rename history backed by SQLite. A sidecar flock
// serializes access across processes.
type Journal struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open initializes or connects to the journal database and applies
// migrations.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire journal lock: %w", err)
	}
	if !ok {
		return nil, errors.New("journal is locked by another mkv-rename process")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	j := &Journal{db: db, lock: lock, path: path}
	if err := j.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return j, nil
}

// Close closes the database and releases the cross-process lock.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	err := j.db.Close()
	if j.lock != nil {
		if unlockErr := j.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database location.
func (j *Journal) Path() string {
	return j.path
}

// NewRunID returns the identifier grouping one invocation's renames.
func NewRunID() string {
	return uuid.NewString()
}

// Record stores one performed rename.
func (j *Journal) Record(ctx context.Context, runID, originalPath, newPath string, unixSeconds int64) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := j.db.ExecContext(
		ctx,
		`INSERT INTO renames (run_id, renamed_at, original_path, new_path, unix_seconds)
         VALUES (?, ?, ?, ?, ?)`,
		runID, timestamp, originalPath, newPath, unixSeconds,
	)
	if err != nil {
		return fmt.Errorf("insert rename: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(
		ctx,
		`SELECT id, run_id, renamed_at, original_path, new_path, unix_seconds
         FROM renames ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query renames: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// LastRunID returns the run identifier of the most recent rename, or "" when
// the journal is empty.
func (j *Journal) LastRunID(ctx context.Context) (string, error) {
	var runID string
	row := j.db.QueryRowContext(ctx, `SELECT run_id FROM renames ORDER BY id DESC LIMIT 1`)
	if err := row.Scan(&runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("scan run id: %w", err)
	}
	return runID, nil
}

// RunEntries returns a run's renames in the order they were performed.
func (j *Journal) RunEntries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(
		ctx,
		`SELECT id, run_id, renamed_at, original_path, new_path, unix_seconds
         FROM renames WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run renames: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// DeleteEntry removes one rename, typically after it has been reverted.
func (j *Journal) DeleteEntry(ctx context.Context, id int64) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM renames WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete rename: %w", err)
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var entry Entry
		var renamedAt string
		if err := rows.Scan(&entry.ID, &entry.RunID, &renamedAt, &entry.OriginalPath, &entry.NewPath, &entry.UnixSeconds); err != nil {
			return nil, fmt.Errorf("scan rename: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, renamedAt); err == nil {
			entry.RenamedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate renames: %w", err)
	}
	return entries, nil
}
