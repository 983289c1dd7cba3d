// Package cache stores simulator results so that repeated evaluations of the
// same column configuration skip the simulator.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per key under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for several optimizer runs
//     against one remote simulator
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys come from a [Keyer] so that every caller hashes configurations the
// same way.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL is how long a cached simulation stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found. A missing or
	// expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// DefaultDir returns ~/.cache/distopt, falling back to the system temp
// directory when the user cache directory is unknown.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "distopt")
	}
	return filepath.Join(os.TempDir(), "distopt-cache")
}
