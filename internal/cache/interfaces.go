package cache

import (
	"context"
	"time"
)

// Cache is the contract shared by the process-local tier and the
// distributed tier fronting the listing store.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error
}

// CacheError is a sentinel error type for cache outcomes.
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache. Timed-out
	// distributed probes report it too; a miss is never a failure.
	ErrCacheMiss CacheError = "cache miss"
)
