// Package kv provides the key-value blob stores that back task persistence.
//
// Every backend stores opaque byte values under string keys. Backends:
//   - FileStore: one file per key in a directory
//   - SQLiteStore: a single kv table in a sqlite database (modernc.org/sqlite)
//   - RedisStore: plain string keys with an optional prefix (go-redis)
//   - MemoryStore: an in-process map, used by tests and dry runs
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a blob store keyed by string.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites the value for key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}

// Backend names accepted by the configuration.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Backends returns the names of all backends.
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendRedis, BackendMemory}
}

// ValidateBackend reports whether name is a known backend.
func ValidateBackend(name string) error {
	for _, b := range Backends() {
		if name == b {
			return nil
		}
	}
	return fmt.Errorf("invalid backend %q, must be one of: %s", name, strings.Join(Backends(), ", "))
}

func validateKey(key string) error {
	if key == "" {
		return errors.New("kv: empty key")
	}
	return nil
}
