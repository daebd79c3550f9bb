package runs

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Status values recorded for a run.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one export run's history entry.
type Run struct {
	ID         string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Playlists  int
	Committed  bool
	HeadCommit string
	Error      string
}

// Duration returns how long the run took, zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome carries the completion facts Finish records.
type Outcome struct {
	Playlists  int
	Committed  bool
	HeadCommit string
}

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run history database in dir.
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
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

	store := &Store{db: db, path: dbPath}
	if err := store.ensureSchema(context.Background()); err != nil {
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
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        status TEXT NOT NULL,
        started_at TEXT NOT NULL,
        finished_at TEXT,
        playlists INTEGER NOT NULL DEFAULT 0,
        committed INTEGER NOT NULL DEFAULT 0,
        head_commit TEXT NOT NULL DEFAULT '',
        error TEXT NOT NULL DEFAULT ''
    )`)
	if err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

// Start records the beginning of a run and returns its identifier.
func (s *Store) Start(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES (?, ?, ?)`,
		id, StatusRunning, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Finish records a run's completion. A non-nil runErr marks it failed.
func (s *Store) Finish(ctx context.Context, id string, outcome Outcome, runErr error) error {
	status := StatusSucceeded
	errText := ""
	if runErr != nil {
		status = StatusFailed
		errText = runErr.Error()
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, playlists = ?, committed = ?, head_commit = ?, error = ?
         WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano),
		outcome.Playlists, boolToInt(outcome.Committed), outcome.HeadCommit, errText, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, started_at, finished_at, playlists, committed, head_commit, error
         FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run       Run
			started   string
			finished  sql.NullString
			committed int
		)
		if err := rows.Scan(&run.ID, &run.Status, &started, &finished,
			&run.Playlists, &committed, &run.HeadCommit, &run.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if finished.Valid && finished.String != "" {
			if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished.String); err != nil {
				return nil, fmt.Errorf("parse finished_at: %w", err)
			}
		}
		run.Committed = committed != 0
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
