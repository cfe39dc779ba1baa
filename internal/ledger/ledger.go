// Package ledger keeps a local SQLite history of navstrip runs and the
// renames each of them applied.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// FileName is the ledger database inside the state directory.
const FileName = "history.db"

// ErrRunNotFound is returned when a run ID has no ledger entry.
var ErrRunNotFound = errors.New("run not found")

// schema contains the DDL executed on open. Using IF NOT EXISTS makes it
// safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    manifest      TEXT NOT NULL,
    root          TEXT NOT NULL,
    started_at    TEXT NOT NULL,
    finished_at   TEXT NOT NULL,
    total_changes INTEGER NOT NULL DEFAULT 0,
    moved         INTEGER NOT NULL DEFAULT 0,
    skipped       INTEGER NOT NULL DEFAULT 0,
    status        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS changes (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id      TEXT NOT NULL REFERENCES runs(id),
    source      TEXT NOT NULL,
    destination TEXT NOT NULL,
    outcome     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS changes_run_id ON changes(run_id);
`

// Run is one ledger row summarizing a pipeline execution.
type Run struct {
	ID           string
	Manifest     string
	Root         string
	StartedAt    time.Time
	FinishedAt   time.Time
	TotalChanges int
	Moved        int
	Skipped      int
	Status       string
}

// Change is one rename applied by a run. Outcome is the relocation action
// type (move, already_moved, missing).
type Change struct {
	Source      string
	Destination string
	Outcome     string
}

// Ledger is a SQLite-backed run history.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database at path, enables WAL mode and
// creates the schema if needed.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: create schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores a run and its changes in a single transaction.
func (l *Ledger) Record(ctx context.Context, run Run, changes []Change) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const insertRun = `
		INSERT INTO runs (id, manifest, root, started_at, finished_at, total_changes, moved, skipped, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertRun,
		run.ID, run.Manifest, run.Root,
		formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.TotalChanges, run.Moved, run.Skipped, run.Status,
	); err != nil {
		return fmt.Errorf("ledger: insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO changes (run_id, source, destination, outcome) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("ledger: prepare change insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range changes {
		if _, err := stmt.ExecContext(ctx, run.ID, c.Source, c.Destination, c.Outcome); err != nil {
			return fmt.Errorf("ledger: insert change %q: %w", c.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger: commit run %s: %w", run.ID, err)
	}
	return nil
}

// Runs returns up to limit runs, newest first. A limit <= 0 returns all.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, manifest, root, started_at, finished_at, total_changes, moved, skipped, status
		FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterate runs: %w", err)
	}
	return runs, nil
}

// Run returns a single run by ID.
func (l *Ledger) Run(ctx context.Context, id string) (Run, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, manifest, root, started_at, finished_at, total_changes, moved, skipped, status
		FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// Changes returns the changes recorded for runID in insertion order.
func (l *Ledger) Changes(ctx context.Context, runID string) ([]Change, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT source, destination, outcome FROM changes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("ledger: list changes for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Change
	for rows.Next() {
		var c Change
		if err := rows.Scan(&c.Source, &c.Destination, &c.Outcome); err != nil {
			return nil, fmt.Errorf("ledger: scan change: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterate changes: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r                 Run
		started, finished string
	)
	if err := s.Scan(&r.ID, &r.Manifest, &r.Root, &started, &finished,
		&r.TotalChanges, &r.Moved, &r.Skipped, &r.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("ledger: scan run: %w", err)
	}
	var err error
	if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("ledger: parse started_at: %w", err)
	}
	if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return Run{}, fmt.Errorf("ledger: parse finished_at: %w", err)
	}
	return r, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
