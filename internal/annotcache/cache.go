// Package annotcache persists per-identifier remote annotation lookups on a
// blob store so a pathway is fetched over the network at most once across
// runs. Entries never expire; the raw response is kept alongside the derived
// text so the derivation can be replayed without a new network call.
package annotcache

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"protannot/internal/blob"
)

// Result is the outcome of a lookup. Known is false when every stage of the
// lookup failed; callers must treat that as "unknown", not as an error.
type Result struct {
	Text  string
	Known bool
}

// Fetcher retrieves the raw remote payload for one identifier.
type Fetcher interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// Deriver reduces a raw payload to the cached annotation text. An empty
// result means the payload carried no usable annotation; empty derivations
// are returned but not persisted, so they are retried on a later run.
type Deriver func(raw string) string

// Cache layers derived-text and raw-response entries over a blob store.
//
// Lookup order: derived entry, raw entry (re-derive), network. The
// check-then-write sequence is not safe across processes sharing one store;
// a single-process run is assumed.
type Cache struct {
	store  blob.Store
	fetch  Fetcher
	derive Deriver
	prefix string
	log    *zap.Logger

	fetches int
}

// New constructs a cache. prefix namespaces the entries within the store
// (e.g. "kegg"); log may be nil.
func New(store blob.Store, fetch Fetcher, derive Deriver, prefix string, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{store: store, fetch: fetch, derive: derive, prefix: prefix, log: log}
}

// SafeID rewrites an identifier into a filesystem-safe entry name.
func SafeID(id string) string {
	return strings.ReplaceAll(id, ":", "_")
}

func (c *Cache) derivedKey(id string) string { return c.prefix + "/" + SafeID(id) + ".txt" }
func (c *Cache) rawKey(id string) string     { return c.prefix + "/" + SafeID(id) + ".dat" }

// Fetches reports how many network fetches the cache has performed.
func (c *Cache) Fetches() int { return c.fetches }

// Lookup resolves the derived annotation text for id. Failures at any stage
// degrade to an unknown Result; they are logged and never propagated.
func (c *Cache) Lookup(ctx context.Context, id string) Result {
	if derived, err := c.store.Get(ctx, c.derivedKey(id)); err == nil {
		return Result{Text: string(derived), Known: true}
	} else if !errors.Is(err, blob.ErrNotExist) {
		c.log.Warn("cache read failed", zap.String("id", id), zap.Error(err))
		return Result{}
	}

	raw, err := c.store.Get(ctx, c.rawKey(id))
	if errors.Is(err, blob.ErrNotExist) {
		raw, err = c.fetchRaw(ctx, id)
	}
	if err != nil {
		c.log.Warn("remote lookup failed", zap.String("id", id), zap.Error(err))
		return Result{}
	}

	text := c.derive(string(raw))
	if text != "" {
		if err := c.store.Put(ctx, c.derivedKey(id), []byte(text)); err != nil {
			c.log.Warn("cache write failed", zap.String("id", id), zap.Error(err))
		}
	}
	return Result{Text: text, Known: true}
}

func (c *Cache) fetchRaw(ctx context.Context, id string) ([]byte, error) {
	raw, err := c.fetch.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	c.fetches++
	if err := c.store.Put(ctx, c.rawKey(id), raw); err != nil {
		c.log.Warn("cache write failed", zap.String("id", id), zap.Error(err))
	}
	return raw, nil
}
