// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
)

// Repository defines the interface for persisting user preferences.
type Repository interface {
	// SetPreference creates or replaces a preference by key (upsert,
	// last-write-wins). The write is durable across process restarts.
	SetPreference(ctx context.Context, key, value string) error

	// GetPreference retrieves a preference value. It returns ("", false)
	// when the key is absent or on any storage error; storage errors are
	// logged, never surfaced, so callers degrade to "no preference known".
	GetPreference(ctx context.Context, key string) (string, bool)

	// ListPreferences returns all stored preferences ordered by key.
	ListPreferences(ctx context.Context) (map[string]string, error)

	// Ping verifies database connectivity and returns an error if the
	// database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
