package bridge

import (
	"context"
	"errors"

	"github.com/jonwraymond/wxshell/observe"
)

// ErrNilPorts indicates Wire was called without ports or glue.
var ErrNilPorts = errors.New("bridge: ports or glue is nil")

// Ports is the channel set a UI app exposes. Inbound channels are written
// by the UI; outbound channels are written by the host.
type Ports struct {
	// Inbound.
	RequestLocation chan struct{}
	ChangeTheme     chan Theme
	SaveCustomTheme chan Theme
	RemoveAddress   chan struct{}

	// Outbound.
	LocationResult      chan Position
	LocationError       chan int
	LocationUnavailable chan struct{}
	Online              chan bool
}

// NewPorts creates ports with every channel buffered to size.
func NewPorts(size int) *Ports {
	if size < 1 {
		size = 1
	}
	return &Ports{
		RequestLocation:     make(chan struct{}, size),
		ChangeTheme:         make(chan Theme, size),
		SaveCustomTheme:     make(chan Theme, size),
		RemoveAddress:       make(chan struct{}, size),
		LocationResult:      make(chan Position, size),
		LocationError:       make(chan int, size),
		LocationUnavailable: make(chan struct{}, size),
		Online:              make(chan bool, size),
	}
}

// Wire services the inbound ports with g until ctx ends. It returns
// immediately; handling runs in its own goroutine. Each location request is
// handled independently so a slow geolocator does not stall other ports.
func Wire(ctx context.Context, p *Ports, g *Glue) error {
	if p == nil || g == nil {
		return ErrNilPorts
	}
	unsubscribe := func() {}
	if p.Online != nil {
		unsubscribe = g.subscribeOnline(p.Online)
	}

	reqLoc, theme, custom, removeAddr := p.RequestLocation, p.ChangeTheme, p.SaveCustomTheme, p.RemoveAddress
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-reqLoc:
				if !ok {
					reqLoc = nil
					continue
				}
				go answerLocation(ctx, p, g)
			case t, ok := <-theme:
				if !ok {
					theme = nil
					continue
				}
				if err := g.ChangeTheme(ctx, t); err != nil {
					g.logger.Warn(ctx, "persist theme failed", observe.F("error", err))
				}
			case t, ok := <-custom:
				if !ok {
					custom = nil
					continue
				}
				if err := g.SaveCustomTheme(ctx, t); err != nil {
					g.logger.Warn(ctx, "persist custom theme failed", observe.F("error", err))
				}
			case _, ok := <-removeAddr:
				if !ok {
					removeAddr = nil
					continue
				}
				if err := g.RemoveAddress(ctx); err != nil {
					g.logger.Warn(ctx, "remove address failed", observe.F("error", err))
				}
			}
		}
	}()
	return nil
}

func answerLocation(ctx context.Context, p *Ports, g *Glue) {
	out := g.RequestLocation(ctx)
	switch out.Status {
	case LocationResolved:
		send(ctx, p.LocationResult, out.Position)
	case LocationFailed:
		send(ctx, p.LocationError, out.Code)
	case LocationUnavailable:
		send(ctx, p.LocationUnavailable, struct{}{})
	}
}

func send[T any](ctx context.Context, ch chan T, v T) {
	if ch == nil {
		return
	}
	select {
	case ch <- v:
	case <-ctx.Done():
	}
}
