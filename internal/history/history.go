// Package history keeps a SQLite log of batch resolution runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fjacquet/budget-analytics/internal/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS resolution_runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    input_file TEXT NOT NULL,
    total INTEGER NOT NULL,
    manual INTEGER NOT NULL,
    auto_rule INTEGER NOT NULL,
    product_default INTEGER NOT NULL,
    none INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_resolution_runs_started
    ON resolution_runs(started_at);
`

// Run is one recorded batch resolution.
type Run struct {
	ID        string
	StartedAt time.Time
	InputFile string
	Stats     models.ResolutionStats
}

// Store manages the resolution_runs table.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every pooled connection to :memory: would see its own empty database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a run. A missing ID is generated and a zero StartedAt is
// set to now; the stored run is returned.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC()

	query := `
		INSERT INTO resolution_runs (id, started_at, input_file, total, manual, auto_rule, product_default, none)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.StartedAt.Format(time.RFC3339Nano),
		run.InputFile,
		run.Stats.Total,
		run.Stats.Manual,
		run.Stats.AutoRule,
		run.Stats.ProductDefault,
		run.Stats.Unassigned,
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT id, started_at, input_file, total, manual, auto_rule, product_default, none
		FROM resolution_runs
		ORDER BY started_at DESC, id
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		if err := rows.Scan(
			&run.ID,
			&startedAt,
			&run.InputFile,
			&run.Stats.Total,
			&run.Stats.Manual,
			&run.Stats.AutoRule,
			&run.Stats.ProductDefault,
			&run.Stats.Unassigned,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
