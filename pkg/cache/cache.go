// Package cache stores rendered artifacts keyed by the document and the
// options they were produced with.
//
// Three backends implement [Cache]:
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared storage for server deployments
//   - [NullCache]: never stores anything, for --no-cache and tests
//
// Keys are derived by a [Keyer] from the SHA-256 of the canonical document
// plus the options that affect the output, so a changed document or viewport
// never hits a stale entry. [ScopedKeyer] prefixes keys to isolate tenants
// sharing one backend.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long entries live when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Cache is a byte store with per-entry expiration.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
