package cache

import (
	"context"
	"sync"
)

// MemoryBackend is an in-memory Backend implementation.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string][]byte)}
}

// Get retrieves a value from the backend. Returns (nil, false) on miss.
func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool) {
	b.mu.RLock()
	v, ok := b.entries[key]
	b.mu.RUnlock()
	return v, ok
}

// Set stores a value, replacing any previous one.
func (b *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	b.entries[key] = value
	b.mu.Unlock()
	return nil
}

// Delete removes a value. Idempotent - no error on miss.
func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	delete(b.entries, key)
	b.mu.Unlock()
	return nil
}

// Len returns the number of stored entries.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Ensure MemoryBackend implements Backend
var _ Backend = (*MemoryBackend)(nil)
