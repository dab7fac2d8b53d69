package cache

import (
	"context"
	"encoding/base64"

	"github.com/jonwraymond/wxshell/store"
)

// StoreBackend persists entries through a string-valued store.Store.
// Values are base64 encoded.
type StoreBackend struct {
	s store.Store
}

// NewStoreBackend wraps s.
func NewStoreBackend(s store.Store) *StoreBackend {
	return &StoreBackend{s: s}
}

// Get retrieves a value. Store errors and corrupt values are reported as misses.
func (b *StoreBackend) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := b.s.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a value, replacing any previous one.
func (b *StoreBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return b.s.Set(ctx, key, base64.StdEncoding.EncodeToString(value))
}

// Delete removes a value. Idempotent.
func (b *StoreBackend) Delete(ctx context.Context, key string) error {
	return b.s.Delete(ctx, key)
}

var _ Backend = (*StoreBackend)(nil)
