// Package blob provides the object storage abstraction backing the remote
// annotation cache. Semantics mirror a minimal subset of S3 so the S3 adapter
// is nearly 1:1 while the filesystem adapter can emulate them for local runs.
package blob

import (
	"context"
	"errors"
	"fmt"
)

// Driver identifies a concrete storage backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local filesystem (default, dev)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// ErrNotExist is returned by Get when no object is stored under the key.
var ErrNotExist = errors.New("blob: object does not exist")

// Store is a small byte-oriented object store. Cache entries are small text
// payloads, so the interface trades streaming for simplicity. Put overwrites:
// the cache layer only writes a key it has just found missing, and rewriting
// an identical derivation must not fail a run.
type Store interface {
	// Put stores data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the object contents, or an error wrapping ErrNotExist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// List returns keys with the given prefix, ascending.
	List(ctx context.Context, prefix string) ([]string, error)
	// Driver returns the configured backend driver.
	Driver() Driver
}

// Options selects and parameterizes a Store backend. Callers resolve their
// configuration (file, flags, environment) into Options and leave the driver
// switch here. S3 credentials stay environment-driven, see s3.go.
type Options struct {
	Driver Driver
	Root   string // filesystem root when Driver is fs (default ./cached)
}

// Open constructs the Store named by opts. An empty driver means fs.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.Driver == "" {
		opts.Driver = DriverFilesystem
	}
	switch opts.Driver {
	case DriverFilesystem:
		return NewFilesystem(opts.Root)
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %s", opts.Driver)
	}
}
