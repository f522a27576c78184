package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is not found in the cache.
var ErrCacheMiss = errors.New("cache: key not found")

// Service is the injected cache collaborator. Values are stored as JSON
// so both backends behave identically.
type Service interface {
	// Set stores a value with a TTL. Zero TTL means no expiration.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get retrieves a value into dest, returning ErrCacheMiss when absent
	// or expired.
	Get(ctx context.Context, key string, dest interface{}) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether a key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases backend resources.
	Close() error
}
