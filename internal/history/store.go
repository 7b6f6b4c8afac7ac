package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one settled worker call.
type Record struct {
	ID           string
	Method       string
	StartedAt    time.Time
	FinishedAt   time.Time
	OK           bool
	ErrorKind    string
	ErrorMessage string
}

// Duration is the call's wall-clock time.
func (r Record) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store manages call-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path and applies
// migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history: database path required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS calls (
	id TEXT PRIMARY KEY,
	method TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	ok INTEGER NOT NULL,
	error_kind TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_calls_started_at ON calls(started_at DESC);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply history schema: %w", err)
	}
	return nil
}

// Add persists one settled call.
func (s *Store) Add(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return errors.New("history: record id required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO calls (id, method, started_at, finished_at, ok, error_kind, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Method,
		rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli(),
		boolToInt(rec.OK), rec.ErrorKind, rec.ErrorMessage)
	if err != nil {
		return fmt.Errorf("insert call record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, method, started_at, finished_at, ok, error_kind, error_message
		 FROM calls ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query call records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var started, finished int64
		var ok int
		if err := rows.Scan(&rec.ID, &rec.Method, &started, &finished, &ok, &rec.ErrorKind, &rec.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan call record: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started)
		rec.FinishedAt = time.UnixMilli(finished)
		rec.OK = ok != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune keeps only the newest keep records.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM calls WHERE id NOT IN (
			SELECT id FROM calls ORDER BY started_at DESC, id LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune call records: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return removed, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
