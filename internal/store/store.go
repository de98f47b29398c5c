// Package store persists cleaned paper records to a SQLite database, one run
// per pipeline invocation.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/cord19-explorer/internal/cleaning"
	"github.com/KaramelBytes/cord19-explorer/internal/papers"
	"github.com/KaramelBytes/cord19-explorer/internal/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  created_at TEXT NOT NULL,
  source TEXT NOT NULL,
  rows_in INTEGER NOT NULL,
  rows_out INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS papers (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  title TEXT,
  abstract TEXT,
  authors TEXT,
  journal TEXT NOT NULL,
  source TEXT,
  publish_time TEXT NOT NULL,
  year INTEGER NOT NULL,
  abstract_word_count INTEGER NOT NULL,
  PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_papers_run_year ON papers(run_id, year);
`

// Run describes one pipeline invocation.
type Run struct {
	ID        string
	CreatedAt time.Time
	Source    string
	RowsIn    int
	RowsOut   int
}

// NewRun returns a run with a fresh id stamped now.
func NewRun(source string, rowsIn, rowsOut int) Run {
	return Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		RowsIn:    rowsIn,
		RowsOut:   rowsOut,
	}
}

// Store wraps the SQLite handle.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("ensure dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// SaveRun writes run and its records in a single transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, records []papers.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, source, rows_in, rows_out) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(time.RFC3339), run.Source, run.RowsIn, run.RowsOut); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO papers
  (run_id, position, title, abstract, authors, journal, source, publish_time, year, abstract_word_count)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare papers: %w", err)
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, run.ID, r.Position, r.Title, r.Abstract, r.Authors,
			r.Journal, r.Source, cleaning.FormatDate(r.PublishTime), r.Year, r.AbstractWordCount); err != nil {
			return fmt.Errorf("insert paper %d: %w", r.Position, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, rows_in, rows_out FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &created, &r.Source, &r.RowsIn, &r.RowsOut); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		t, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("run %s created_at: %w", r.ID, err)
		}
		r.CreatedAt = t
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountPapers returns the number of records stored for runID.
func (s *Store) CountPapers(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count papers: %w", err)
	}
	return n, nil
}

// YearCount is a stored per-year tally.
type YearCount struct {
	Year  int
	Count int
}

// YearCounts tallies stored records per year, ascending.
func (s *Store) YearCounts(ctx context.Context, runID string) ([]YearCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT year, COUNT(*) FROM papers WHERE run_id = ? GROUP BY year ORDER BY year`, runID)
	if err != nil {
		return nil, fmt.Errorf("query year counts: %w", err)
	}
	defer rows.Close()
	var out []YearCount
	for rows.Next() {
		var yc YearCount
		if err := rows.Scan(&yc.Year, &yc.Count); err != nil {
			return nil, err
		}
		out = append(out, yc)
	}
	return out, rows.Err()
}
