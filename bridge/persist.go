package bridge

import (
	"context"
	"fmt"

	"github.com/jonwraymond/wxshell/store"
)

// Persister applies relayed messages to the persisted slots.
//
// Rules:
//   - meteo with data: overwrite WEATHER_DATA
//   - meteo with null data: ignored
//   - address with data: overwrite ADDRESS_DATA
//   - address with null data: delete ADDRESS_DATA and its legacy spelling
type Persister struct {
	store store.Store
}

// NewPersister creates a persister writing to s.
func NewPersister(s store.Store) *Persister {
	return &Persister{store: s}
}

// Apply persists m.
func (p *Persister) Apply(ctx context.Context, m Message) error {
	if p == nil || p.store == nil {
		return ErrNilStore
	}
	kind, ok := m.Kind()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}

	switch kind {
	case KindWeather:
		if m.Data == nil {
			return nil
		}
		return p.store.Set(ctx, store.KeyWeather, *m.Data)
	case KindAddress:
		if m.Data == nil {
			return store.Remove(ctx, p.store, store.KeyAddress)
		}
		return p.store.Set(ctx, store.KeyAddress, *m.Data)
	}
	return nil
}
