package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const defaultSQLitePath = "protannot.db"

// SQLite archives runs in a single-file database.
type SQLite struct {
	db *sql.DB
}

var _ Archive = (*SQLite)(nil)

// NewSQLite opens (creating if needed) the archive at path. An empty path
// falls back to the default file in the working directory.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		species TEXT NOT NULL,
		created_at TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		report BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO runs (id, species, created_at, row_count, report)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			species = excluded.species,
			created_at = excluded.created_at,
			row_count = excluded.row_count,
			report = excluded.report`,
		run.ID, run.Species, run.CreatedAt.UTC().Format(time.RFC3339Nano), run.Rows, run.Report)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, species, created_at, row_count, report FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

func (s *SQLite) List(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, species, created_at, row_count, report FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (Run, error) {
	var run Run
	var created string
	if err := r.Scan(&run.ID, &run.Species, &created, &run.Rows, &run.Report); err != nil {
		return Run{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = ts
	return run, nil
}
