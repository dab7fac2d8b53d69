package store

import (
	"context"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a slot key.
const MaxKeyLength = 256

// Well-known slots.
const (
	KeyWeather     = "WEATHER_DATA"
	KeyAddress     = "ADDRESS_DATA"
	KeyTheme       = "THEME"
	KeyCustomTheme = "CUSTOM_THEME"
)

// legacyKeys maps canonical slots to the spelling older front-ends wrote.
var legacyKeys = map[string]string{
	KeyWeather: "weatherData",
	KeyAddress: "address",
}

// Store is a string-keyed, string-valued durable store.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get returns ("", false, nil) on miss; Delete is idempotent.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// ValidateKey checks if a key is usable as a slot name.
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

// Lookup reads a slot by its canonical key, falling back to the legacy
// spelling when the canonical slot is empty. Writes never use legacy keys.
func Lookup(ctx context.Context, s Store, key string) (string, bool, error) {
	if s == nil {
		return "", false, ErrNilStore
	}
	v, ok, err := s.Get(ctx, key)
	if err != nil || ok {
		return v, ok, err
	}
	legacy, has := legacyKeys[key]
	if !has {
		return "", false, nil
	}
	return s.Get(ctx, legacy)
}

// Remove deletes a slot together with its legacy spelling, so Lookup cannot
// fall back to a value the caller meant to clear.
func Remove(ctx context.Context, s Store, key string) error {
	if s == nil {
		return ErrNilStore
	}
	if err := s.Delete(ctx, key); err != nil {
		return err
	}
	if legacy, ok := legacyKeys[key]; ok {
		return s.Delete(ctx, legacy)
	}
	return nil
}
