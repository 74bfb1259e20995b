package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for snapshot store operations.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrEntryNotFound indicates no snapshot exists under the requested key.
	ErrEntryNotFound = errors.New("store: snapshot entry not found")
)

// Store persists encoded snapshot streams under caller-chosen entry keys.
//
// Keys are build fingerprints: opaque, flat identifiers with no hierarchy.
// Values are the raw bytes of one snapshot stream. A Store never interprets
// the bytes it holds; freshness and validity are the engine's concern.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores data under key, replacing any existing entry.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the bytes stored under key, or ErrEntryNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the entry under key. Deleting a missing entry is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Has reports whether an entry exists under key.
	Has(ctx context.Context, key string) (bool, error)

	// Close releases the store's resources.
	Close() error
}

// validateKey rejects keys that cannot serve as flat entry identifiers.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("store: entry key must not be empty")
	}
	if strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return fmt.Errorf("store: entry key %q must not contain path elements", key)
	}
	return nil
}
