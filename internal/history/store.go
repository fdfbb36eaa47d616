package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultListLimit caps List when the filter sets no limit
const DefaultListLimit = 50

// timeLayout is fixed width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for an unknown run ID
var ErrNotFound = errors.New("run not found")

// Store is the run ledger backed by SQLite
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database and applies migrations
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("open ledger: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts run. A missing ID is generated.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.Status == "" {
		return fmt.Errorf("record run %s: status is required", run.ID)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, sample_type, location, process,
            collection_date, routine, status, error_kind, error_message,
            failed_stage, source_path, report_path, rows_processed,
            blank_values, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.SampleType,
		nullableString(run.Location),
		run.Process,
		run.CollectionDate,
		nullableString(run.Routine),
		string(run.Status),
		nullableString(run.ErrorKind),
		nullableString(run.ErrorMessage),
		nullableString(run.FailedStage),
		nullableString(run.SourcePath),
		nullableString(run.ReportPath),
		run.Rows,
		run.BlankValues,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Get returns the run with the given ID
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+" WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns runs matching f, most recent first
func (s *Store) List(ctx context.Context, f Filter) ([]*Run, error) {
	var (
		clauses []string
		args    []any
	)
	if f.SampleType != "" {
		clauses = append(clauses, "sample_type = ?")
		args = append(args, f.SampleType)
	}
	if f.Location != "" {
		clauses = append(clauses, "location = ?")
		args = append(args, f.Location)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(f.Status))
	}

	query := selectRuns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query += " ORDER BY started_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

const selectRuns = `SELECT
    id, started_at, finished_at, sample_type, location, process,
    collection_date, routine, status, error_kind, error_message,
    failed_stage, source_path, report_path, rows_processed,
    blank_values, duration_ms
FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run                          Run
		started, finished, status    string
		location, routine, errorKind sql.NullString
		errorMessage, failedStage    sql.NullString
		sourcePath, reportPath       sql.NullString
		durationMS                   int64
	)
	if err := sc.Scan(
		&run.ID, &started, &finished, &run.SampleType, &location, &run.Process,
		&run.CollectionDate, &routine, &status, &errorKind, &errorMessage,
		&failedStage, &sourcePath, &reportPath, &run.Rows,
		&run.BlankValues, &durationMS,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.Location = location.String
	run.Routine = routine.String
	run.ErrorKind = errorKind.String
	run.ErrorMessage = errorMessage.String
	run.FailedStage = failedStage.String
	run.SourcePath = sourcePath.String
	run.ReportPath = reportPath.String
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
