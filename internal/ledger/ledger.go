// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite record of pipeline runs: when each run
// started, which authors it merged, and what every batch load returned.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scholar-graph/internal/graphdb"
	"github.com/pdiddy/scholar-graph/internal/reconcile"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// timeFormat is fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by Run for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// RunInfo describes a run when it begins.
type RunInfo struct {
	InputDir string
	Converge bool
	DryRun   bool
}

// Run is one row of the runs table.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Status     string    `json:"status" yaml:"status"`
	InputDir   string    `json:"input_dir" yaml:"input_dir"`
	Converge   bool      `json:"converge" yaml:"converge"`
	DryRun     bool      `json:"dry_run" yaml:"dry_run"`
}

// Load is the stored outcome of one batch load.
type Load struct {
	Batch      types.BatchKind `json:"batch" yaml:"batch"`
	Rows       int             `json:"rows" yaml:"rows"`
	Count      int64           `json:"count" yaml:"count"`
	Writes     int64           `json:"writes" yaml:"writes"`
	About      int64           `json:"about" yaml:"about"`
	DurationMS int64           `json:"duration_ms" yaml:"duration_ms"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is a run with its merges and loads.
type Report struct {
	Run    Run                  `json:"run" yaml:"run"`
	Merges []reconcile.Decision `json:"merges" yaml:"merges"`
	Loads  []Load               `json:"loads" yaml:"loads"`
}

// Ledger wraps the run database.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the ledger database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	l := &Ledger{db: db, now: time.Now}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			status TEXT NOT NULL,
			input_dir TEXT,
			converge INTEGER NOT NULL DEFAULT 0,
			dry_run INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS merges (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			pass INTEGER NOT NULL,
			full_name TEXT NOT NULL,
			canonical_id TEXT NOT NULL,
			canonical_h_index REAL,
			removed_id TEXT NOT NULL,
			removed_h_index REAL,
			rewritten_refs INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS loads (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			batch TEXT NOT NULL,
			rows INTEGER,
			count INTEGER,
			writes INTEGER,
			about INTEGER,
			duration_ms INTEGER,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_merges_run_id ON merges(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_loads_run_id ON loads(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun inserts a running run and returns its id.
func (l *Ledger) BeginRun(ctx context.Context, info RunInfo) (string, error) {
	id := uuid.NewString()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, status, input_dir, converge, dry_run)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, l.now().UTC().Format(timeFormat), StatusRunning,
		info.InputDir, info.Converge, info.DryRun,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// RecordDecisions stores the merges of a run in one transaction.
func (l *Ledger) RecordDecisions(ctx context.Context, runID string, decisions []reconcile.Decision) error {
	if len(decisions) == 0 {
		return nil
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO merges (run_id, pass, full_name, canonical_id, canonical_h_index, removed_id, removed_h_index, rewritten_refs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range decisions {
		_, err := stmt.ExecContext(ctx,
			runID, d.Pass, d.FullName,
			d.CanonicalID, d.CanonicalHIndex,
			d.RemovedID, d.RemovedHIndex,
			d.RewrittenRefs,
		)
		if err != nil {
			return fmt.Errorf("inserting merge of %s: %w", d.RemovedID, err)
		}
	}
	return tx.Commit()
}

// RecordLoad stores the outcome of one batch load.
func (l *Ledger) RecordLoad(ctx context.Context, runID string, res graphdb.LoadResult) error {
	var errText sql.NullString
	if res.Err != nil {
		errText = sql.NullString{String: res.Err.Error(), Valid: true}
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO loads (run_id, batch, rows, count, writes, about, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, string(res.Batch), res.Rows, res.Count, res.Writes, res.About,
		res.Duration.Milliseconds(), errText,
	)
	if err != nil {
		return fmt.Errorf("inserting %s load: %w", res.Batch, err)
	}
	return nil
}

// FinishRun sets the final status and finish time.
func (l *Ledger) FinishRun(ctx context.Context, runID, status string) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, l.now().UTC().Format(timeFormat), runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishing run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// Runs returns up to limit runs, newest first. A non-positive limit
// returns all runs.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, finished_at, status, input_dir, converge, dry_run
		FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
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
	return runs, rows.Err()
}

// Run returns the full report for one run.
func (l *Ledger) Run(ctx context.Context, id string) (Report, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, status, input_dir, converge, dry_run
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Report{}, err
	}

	report := Report{Run: run, Merges: []reconcile.Decision{}, Loads: []Load{}}

	merges, err := l.db.QueryContext(ctx,
		`SELECT pass, full_name, canonical_id, canonical_h_index, removed_id, removed_h_index, rewritten_refs
		 FROM merges WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return Report{}, fmt.Errorf("querying merges: %w", err)
	}
	defer merges.Close()
	for merges.Next() {
		var d reconcile.Decision
		if err := merges.Scan(&d.Pass, &d.FullName, &d.CanonicalID, &d.CanonicalHIndex,
			&d.RemovedID, &d.RemovedHIndex, &d.RewrittenRefs); err != nil {
			return Report{}, fmt.Errorf("scanning merge: %w", err)
		}
		report.Merges = append(report.Merges, d)
	}
	if err := merges.Err(); err != nil {
		return Report{}, fmt.Errorf("reading merges: %w", err)
	}

	loads, err := l.db.QueryContext(ctx,
		`SELECT batch, rows, count, writes, about, duration_ms, error
		 FROM loads WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return Report{}, fmt.Errorf("querying loads: %w", err)
	}
	defer loads.Close()
	for loads.Next() {
		var (
			ld      Load
			batch   string
			errText sql.NullString
		)
		if err := loads.Scan(&batch, &ld.Rows, &ld.Count, &ld.Writes, &ld.About,
			&ld.DurationMS, &errText); err != nil {
			return Report{}, fmt.Errorf("scanning load: %w", err)
		}
		ld.Batch = types.BatchKind(batch)
		ld.Error = errText.String
		report.Loads = append(report.Loads, ld)
	}
	if err := loads.Err(); err != nil {
		return Report{}, fmt.Errorf("reading loads: %w", err)
	}

	return report, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r                Run
		started          string
		finished, dir    sql.NullString
		converge, dryRun bool
	)
	if err := s.Scan(&r.ID, &started, &finished, &r.Status, &dir, &converge, &dryRun); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	r.InputDir = dir.String
	r.Converge = converge
	r.DryRun = dryRun

	var err error
	if r.StartedAt, err = time.Parse(timeFormat, started); err != nil {
		return Run{}, fmt.Errorf("parsing started_at of run %s: %w", r.ID, err)
	}
	if finished.Valid && finished.String != "" {
		if r.FinishedAt, err = time.Parse(timeFormat, finished.String); err != nil {
			return Run{}, fmt.Errorf("parsing finished_at of run %s: %w", r.ID, err)
		}
	}
	return r, nil
}
