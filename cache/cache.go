package cache

import (
	"context"
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilCache          = errors.New("cache: cache is nil")
	ErrInvalidKey        = errors.New("cache: key is invalid")
	ErrKeyTooLong        = errors.New("cache: key exceeds max length")
	ErrInvalidName       = errors.New("cache: cache name is invalid")
	ErrUnsupportedMethod = errors.New("cache: request method is not cacheable")
	ErrNotCacheable      = errors.New("cache: response rejected by policy")
	ErrBadStatus         = errors.New("cache: response status is not ok")
)

// Backend stores encoded entries by key.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get should never error; it returns (nil, false) on miss.
type Backend interface {
	// Get retrieves an encoded entry. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores an encoded entry, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes an entry. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
