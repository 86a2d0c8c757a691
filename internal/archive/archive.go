// Package archive persists finished report builds so past runs can be listed
// and retrieved. Three backends are provided: an in-memory archive for tests,
// a SQLite archive for single-host use, and a Postgres archive for shared
// deployments. The backend is selected through Options.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Driver identifies an archive backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ErrNotFound reports a run id absent from the archive.
var ErrNotFound = errors.New("archive: run not found")

// Run is one archived report build. Report holds the serialized
// tab-separated output.
type Run struct {
	ID        string
	Species   string
	CreatedAt time.Time
	Rows      int
	Report    []byte
}

// Archive stores report runs keyed by id. Save overwrites an existing run
// with the same id.
type Archive interface {
	Save(ctx context.Context, run Run) error
	Get(ctx context.Context, id string) (Run, error)
	List(ctx context.Context) ([]Run, error)
	Close() error
}

// Options selects and parameterizes an archive backend. Callers resolve
// their configuration (file, flags, environment) into Options and leave the
// driver switch here.
type Options struct {
	Driver      Driver
	SQLitePath  string // SQLite database path (default protannot.db)
	PostgresDSN string
}

// Open constructs the backend named by opts. An empty driver means the
// SQLite archive at its default path.
func Open(ctx context.Context, opts Options) (Archive, error) {
	if opts.Driver == "" {
		opts.Driver = DriverSQLite
	}
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(ctx, opts.SQLitePath)
	case DriverPostgres:
		return NewPostgres(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown archive driver %q", opts.Driver)
	}
}
