package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reframe/internal/batch"
	"reframe/internal/fileutil"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump on schema changes;
// users then delete the history database (it is advisory data only).
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an
// incompatible version.
var ErrSchemaMismatch = errors.New("history schema version mismatch")

// Store persists batch run summaries in SQLite. Recording is
// best-effort: callers log store errors and never fail the run on
// them.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one recorded batch invocation.
type Run struct {
	RunID      string
	Attempted  int
	Processed  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// FileRecord is one file's outcome within a run.
type FileRecord struct {
	Input       string
	Output      string
	Outcome     string
	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration
	Error       string
}

// Open connects to (or creates) the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history database path required")
	}
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
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

// Path returns the database location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create history schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// RecordRun stores one batch summary with its per-file outcomes.
func (s *Store) RecordRun(ctx context.Context, summary batch.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, attempted, processed, started_at, finished_at)
         VALUES (?, ?, ?, ?, ?)`,
		summary.RunID,
		summary.Attempted,
		summary.Processed,
		summary.Started.UTC().Format(time.RFC3339Nano),
		summary.Finished.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, result := range summary.Results {
		errText := ""
		if result.Err != nil {
			errText = result.Err.Error()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_files (run_id, input, output, outcome, input_bytes, output_bytes, elapsed_ms, error)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			summary.RunID,
			result.Input,
			result.Output,
			string(result.Outcome),
			result.InputBytes,
			result.OutputBytes,
			result.Elapsed.Milliseconds(),
			nullableString(errText),
		)
		if err != nil {
			return fmt.Errorf("insert run file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history tx: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, attempted, processed, started_at, finished_at
         FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.RunID, &run.Attempted, &run.Processed, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunFiles returns the per-file outcomes of one run in insertion
// order.
func (s *Store) RunFiles(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT input, output, outcome, input_bytes, output_bytes, elapsed_ms, error
         FROM run_files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var record FileRecord
		var output, errText sql.NullString
		var elapsedMS int64
		if err := rows.Scan(&record.Input, &output, &record.Outcome, &record.InputBytes, &record.OutputBytes, &elapsedMS, &errText); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		record.Output = output.String
		record.Error = errText.String
		record.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		records = append(records, record)
	}
	return records, rows.Err()
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
