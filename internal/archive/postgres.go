package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const defaultPostgresDSN = "postgres://localhost/protannot?sslmode=disable"

// Postgres archives runs in a shared database.
type Postgres struct {
	db *sql.DB
}

var _ Archive = (*Postgres)(nil)

// NewPostgres opens the archive at dsn (falls back to a local default),
// pinging the server and ensuring the runs table exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		species TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		row_count INTEGER NOT NULL,
		report BYTEA NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Save(ctx context.Context, run Run) error {
	_, err := p.db.ExecContext(ctx, `INSERT INTO runs (id, species, created_at, row_count, report)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			species = EXCLUDED.species,
			created_at = EXCLUDED.created_at,
			row_count = EXCLUDED.row_count,
			report = EXCLUDED.report`,
		run.ID, run.Species, run.CreatedAt.UTC(), run.Rows, run.Report)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (Run, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, species, created_at, row_count, report FROM runs WHERE id = $1`, id)
	var run Run
	err := row.Scan(&run.ID, &run.Species, &run.CreatedAt, &run.Rows, &run.Report)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

func (p *Postgres) List(ctx context.Context) ([]Run, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, species, created_at, row_count, report FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Species, &run.CreatedAt, &run.Rows, &run.Report); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

func (p *Postgres) Close() error { return p.db.Close() }
