package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jonwraymond/wxshell/observe"
	"github.com/jonwraymond/wxshell/store"
)

// Geolocation error codes reported to the UI.
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// Position is a geolocation fix.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// PositionError is a geolocation failure carrying a numeric code.
type PositionError struct {
	Code    int
	Message string
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("bridge: position error %d: %s", e.Code, e.Message)
}

// Geolocator is the host's geolocation capability. It may block
// indefinitely; callers bound it with ctx.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// LocationStatus is the branch a location request took.
type LocationStatus int

const (
	// LocationResolved carries a Position.
	LocationResolved LocationStatus = iota
	// LocationFailed carries an error code.
	LocationFailed
	// LocationUnavailable means the host has no geolocation capability.
	LocationUnavailable
)

// LocationOutcome is the result of Glue.RequestLocation.
type LocationOutcome struct {
	Status   LocationStatus
	Position Position
	Code     int
}

// Glue implements the host side of the UI ports.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: store failures are returned; RequestLocation never errors.
type Glue struct {
	store  store.Store
	geo    Geolocator
	logger observe.Logger

	mu     sync.Mutex
	online map[chan bool]struct{}
}

// GlueOption configures a Glue.
type GlueOption func(*Glue)

// WithGeolocator sets the geolocation capability.
func WithGeolocator(g Geolocator) GlueOption {
	return func(gl *Glue) {
		gl.geo = g
	}
}

// WithGlueLogger sets the logger.
func WithGlueLogger(l observe.Logger) GlueOption {
	return func(gl *Glue) {
		if l != nil {
			gl.logger = l
		}
	}
}

// NewGlue creates port glue over s.
func NewGlue(s store.Store, opts ...GlueOption) *Glue {
	g := &Glue{
		store:  s,
		logger: observe.NopLogger(),
		online: make(map[chan bool]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RequestLocation asks the geolocator for a fix. Absence of the capability,
// failure and success are reported as distinct outcomes.
func (g *Glue) RequestLocation(ctx context.Context) LocationOutcome {
	if g.geo == nil {
		return LocationOutcome{Status: LocationUnavailable}
	}
	pos, err := g.geo.CurrentPosition(ctx)
	if err != nil {
		code := CodePositionUnavailable
		var pe *PositionError
		if errors.As(err, &pe) {
			code = pe.Code
		} else if errors.Is(err, context.DeadlineExceeded) {
			code = CodeTimeout
		}
		return LocationOutcome{Status: LocationFailed, Code: code}
	}
	return LocationOutcome{Status: LocationResolved, Position: pos}
}

// ChangeTheme overwrites the THEME slot.
func (g *Glue) ChangeTheme(ctx context.Context, t Theme) error {
	return g.saveTheme(ctx, store.KeyTheme, t)
}

// SaveCustomTheme overwrites the CUSTOM_THEME slot.
func (g *Glue) SaveCustomTheme(ctx context.Context, t Theme) error {
	return g.saveTheme(ctx, store.KeyCustomTheme, t)
}

func (g *Glue) saveTheme(ctx context.Context, key string, t Theme) error {
	if g.store == nil {
		return ErrNilStore
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return g.store.Set(ctx, key, string(data))
}

// RemoveAddress deletes the ADDRESS_DATA slot and its legacy spelling.
func (g *Glue) RemoveAddress(ctx context.Context) error {
	if g.store == nil {
		return ErrNilStore
	}
	return store.Remove(ctx, g.store, store.KeyAddress)
}

// SetOnline forwards a connectivity change to every wired UI. Only the
// latest value is kept for a UI that has not read the previous one.
func (g *Glue) SetOnline(online bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for ch := range g.online {
		select {
		case ch <- online:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- online:
			default:
			}
		}
	}
}

func (g *Glue) subscribeOnline(ch chan bool) func() {
	g.mu.Lock()
	g.online[ch] = struct{}{}
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		delete(g.online, ch)
		g.mu.Unlock()
	}
}
