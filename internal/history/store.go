// Package history persists sequence run outcomes to a local SQLite file so
// farming results can be reviewed across restarts.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS sequence_runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	mode            TEXT NOT NULL,
	started_at      DATETIME NOT NULL,
	finished_at     DATETIME NOT NULL,
	steps_completed INTEGER NOT NULL,
	aborted_step    TEXT,
	completed       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sequence_runs_mode ON sequence_runs(mode, started_at);
`

// Store wraps the SQLite connection holding the run history.
type Store struct {
	conn *sql.DB
	path string
}

// SequenceRun is one recorded mode activation.
type SequenceRun struct {
	ID             int64
	Mode           string
	StartedAt      time.Time
	FinishedAt     time.Time
	StepsCompleted int
	AbortedStep    string
	Completed      bool
}

// Open opens or creates the history database at the given path and applies
// the schema. The parent directory is created if needed.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	// SQLite works best with a single connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	return &Store{conn: conn, path: dbPath}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordSequence inserts one run outcome. An empty abortedStep is stored as
// NULL.
func (s *Store) RecordSequence(mode string, startedAt, finishedAt time.Time, stepsCompleted int, abortedStep string, completed bool) error {
	var aborted sql.NullString
	if abortedStep != "" {
		aborted = sql.NullString{String: abortedStep, Valid: true}
	}

	_, err := s.conn.Exec(`
		INSERT INTO sequence_runs (
			mode,
			started_at,
			finished_at,
			steps_completed,
			aborted_step,
			completed
		) VALUES (?, ?, ?, ?, ?, ?)
	`, mode, startedAt.UTC(), finishedAt.UTC(), stepsCompleted, aborted, completed)

	if err != nil {
		return fmt.Errorf("failed to record sequence run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first. A non-empty mode
// filters to that mode; limit <= 0 means no limit.
func (s *Store) RecentRuns(mode string, limit int) ([]*SequenceRun, error) {
	query := `
		SELECT id, mode, started_at, finished_at, steps_completed, aborted_step, completed
		FROM sequence_runs
	`
	var args []any
	if mode != "" {
		query += " WHERE mode = ?"
		args = append(args, mode)
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sequence runs: %w", err)
	}
	defer rows.Close()

	var runs []*SequenceRun
	for rows.Next() {
		var run SequenceRun
		var aborted sql.NullString
		if err := rows.Scan(&run.ID, &run.Mode, &run.StartedAt, &run.FinishedAt,
			&run.StepsCompleted, &aborted, &run.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan sequence run: %w", err)
		}
		if aborted.Valid {
			run.AbortedStep = aborted.String
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sequence runs: %w", err)
	}
	return runs, nil
}

// Stats summarizes completion counts per mode.
func (s *Store) Stats() (map[string]int64, error) {
	rows, err := s.conn.Query(`
		SELECT mode, COUNT(*)
		FROM sequence_runs
		WHERE completed = 1
		GROUP BY mode
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var mode string
		var count int64
		if err := rows.Scan(&mode, &count); err != nil {
			return nil, fmt.Errorf("failed to scan history stats: %w", err)
		}
		stats[mode] = count
	}
	return stats, rows.Err()
}
