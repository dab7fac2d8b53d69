package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jonwraymond/wxshell/bridge"
	"github.com/jonwraymond/wxshell/observe"
	"github.com/jonwraymond/wxshell/store"
)

// PermissionGranted is the only permission status that enables geolocation.
const PermissionGranted = "granted"

// PermissionQuerier is the optional host capability reporting the
// geolocation permission status ("granted", "denied", "prompt", ...).
// It may block indefinitely; callers bound it with ctx.
type PermissionQuerier interface {
	GeolocationPermission(ctx context.Context) (string, error)
}

// PermissionFunc adapts a function to PermissionQuerier.
type PermissionFunc func(ctx context.Context) (string, error)

// GeolocationPermission implements PermissionQuerier.
func (f PermissionFunc) GeolocationPermission(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticPermission reports status without querying anything.
func StaticPermission(status string) PermissionQuerier {
	return PermissionFunc(func(context.Context) (string, error) { return status, nil })
}

// Resolver builds the initialization payload from persisted state.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: Resolve never fails; every failure degrades to Fresh.
type Resolver struct {
	store       store.Store
	permissions PermissionQuerier
	locale      string
	now         func() time.Time
	logger      observe.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPermissions sets the permission capability. Without one the
// geolocation flag is false.
func WithPermissions(q PermissionQuerier) Option {
	return func(r *Resolver) {
		r.permissions = q
	}
}

// WithLocale sets the detected UI locale.
func WithLocale(locale string) Option {
	return func(r *Resolver) {
		if locale != "" {
			r.locale = locale
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver reading from s.
func NewResolver(s store.Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  s,
		locale: DefaultLocale,
		now:    time.Now,
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the payload for the current persisted state. It blocks
// on the permission capability only when weather data is available. Saved
// themes are attached to every variant; a malformed theme is dropped.
func (r *Resolver) Resolve(ctx context.Context) Payload {
	p := r.resolveState(ctx)
	p.Theme = r.readTheme(ctx, store.KeyTheme)
	p.CustomTheme = r.readTheme(ctx, store.KeyCustomTheme)
	return p
}

func (r *Resolver) resolveState(ctx context.Context) Payload {
	fresh := Payload{Variant: Fresh, Locale: r.locale}

	weatherBlob, hasWeather := r.read(ctx, store.KeyWeather)
	if !hasWeather {
		return fresh
	}
	weather, ok := parseWeather(weatherBlob)
	if !ok {
		r.logger.Debug(ctx, "weather slot malformed, starting fresh")
		return fresh
	}

	payload := Payload{
		Variant: WeatherOnly,
		Locale:  r.locale,
		Weather: weather,
	}

	if addressBlob, hasAddress := r.read(ctx, store.KeyAddress); hasAddress {
		addr, ok := parseAddress(addressBlob)
		if !ok {
			r.logger.Debug(ctx, "address slot malformed, starting fresh")
			return fresh
		}
		payload.Variant = WeatherAndAddress
		payload.Country = addr.Country
		payload.City = addr.City
		payload.State = addr.State
	}

	payload.UsingGeoLocation = r.usingGeoLocation(ctx)
	payload.Time = r.now()
	return payload
}

func (r *Resolver) read(ctx context.Context, key string) (string, bool) {
	if r.store == nil {
		return "", false
	}
	v, ok, err := store.Lookup(ctx, r.store, key)
	if err != nil {
		r.logger.Warn(ctx, "read persisted slot failed",
			observe.F("key", key), observe.F("error", err))
		return "", false
	}
	return v, ok
}

func (r *Resolver) readTheme(ctx context.Context, key string) *bridge.Theme {
	blob, ok := r.read(ctx, key)
	if !ok {
		return nil
	}
	t, err := bridge.ParseTheme(blob)
	if err != nil {
		r.logger.Debug(ctx, "theme slot malformed, ignoring",
			observe.F("key", key), observe.F("error", err))
		return nil
	}
	return &t
}

func (r *Resolver) usingGeoLocation(ctx context.Context) bool {
	if r.permissions == nil {
		return false
	}

	type answer struct {
		status string
		err    error
	}
	ch := make(chan answer, 1)
	go func() {
		status, err := r.permissions.GeolocationPermission(ctx)
		ch <- answer{status: status, err: err}
	}()

	select {
	case <-ctx.Done():
		return false
	case a := <-ch:
		if a.err != nil {
			r.logger.Debug(ctx, "permission query failed", observe.F("error", a.err))
			return false
		}
		return a.status == PermissionGranted
	}
}

// parseWeather accepts any JSON object.
func parseWeather(blob string) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &obj); err != nil || obj == nil {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(blob)); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

type address struct {
	Country string
	City    *string
	State   *string
}

// parseAddress accepts {"address": {"country": "...", "city"?: "...", "state"?: "..."}}
// with a non-empty country.
func parseAddress(blob string) (address, bool) {
	var doc struct {
		Address *struct {
			Country *string `json:"country"`
			City    *string `json:"city"`
			State   *string `json:"state"`
		} `json:"address"`
	}
	if err := json.Unmarshal([]byte(blob), &doc); err != nil {
		return address{}, false
	}
	if doc.Address == nil || doc.Address.Country == nil || strings.TrimSpace(*doc.Address.Country) == "" {
		return address{}, false
	}
	return address{
		Country: *doc.Address.Country,
		City:    doc.Address.City,
		State:   doc.Address.State,
	}, true
}
