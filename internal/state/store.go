// Package state records pipeline run history in a local SQLite database.
//
// The source datasets are never written; the store only keeps the derived
// run facts (row counts, duplicate counts, match results) so repeated
// analyses of updated registry exports can be compared over time.
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// RunStatus is the terminal status of a recorded run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID          string
	RosterPath  string
	StatusPath  string
	RosterRows  int
	StatusRows  int
	RosterDupes int
	StatusDupes int
	MergedRows  int
	Unmatched   int
	Status      RunStatus
	Error       string
	StartedAt   time.Time
	CompletedAt time.Time
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// Store persists run history to SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates an unopened store.
func NewStore() *Store {
	return &Store{}
}

// Open opens the SQLite database at path, ":memory:" included.
func (s *Store) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", path)
	} else {
		dsn = ":memory:?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping state database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun inserts a finished run.
func (s *Store) SaveRun(run *Run) error {
	if s.db == nil {
		return fmt.Errorf("state database not opened")
	}

	var errMsg *string
	if run.Error != "" {
		errMsg = &run.Error
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (
			id, roster_path, status_path,
			roster_rows, status_rows, roster_dupes, status_dupes,
			merged_rows, unmatched_rows,
			status, error, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RosterPath, run.StatusPath,
		run.RosterRows, run.StatusRows, run.RosterDupes, run.StatusDupes,
		run.MergedRows, run.Unmatched,
		run.Status, errMsg, run.StartedAt.UTC(), run.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID. A unique ID prefix is accepted, so the
// truncated IDs printed by run listings can be pasted back in.
func (s *Store) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("state database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, roster_path, status_path,
			roster_rows, status_rows, roster_dupes, status_dupes,
			merged_rows, unmatched_rows,
			status, error, started_at, completed_at
		FROM runs WHERE id LIKE ? LIMIT 2`, id+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []*Run
	for rows.Next() {
		run := &Run{}
		var errMsg sql.NullString
		if err := rows.Scan(
			&run.ID, &run.RosterPath, &run.StatusPath,
			&run.RosterRows, &run.StatusRows, &run.RosterDupes, &run.StatusDupes,
			&run.MergedRows, &run.Unmatched,
			&run.Status, &errMsg, &run.StartedAt, &run.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if errMsg.Valid {
			run.Error = errMsg.String
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("run not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run id %s is ambiguous", id)
	}
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("state database not opened")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, roster_path, status_path,
			roster_rows, status_rows, roster_dupes, status_dupes,
			merged_rows, unmatched_rows,
			status, error, started_at, completed_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var errMsg sql.NullString
		if err := rows.Scan(
			&run.ID, &run.RosterPath, &run.StatusPath,
			&run.RosterRows, &run.StatusRows, &run.RosterDupes, &run.StatusDupes,
			&run.MergedRows, &run.Unmatched,
			&run.Status, &errMsg, &run.StartedAt, &run.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if errMsg.Valid {
			run.Error = errMsg.String
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading runs: %w", err)
	}
	return runs, nil
}
