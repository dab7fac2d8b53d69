package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonwraymond/wxshell/bridge"
)

// App is a started UI application.
type App interface {
	// Ports returns the app's port channels, or nil when it has none.
	Ports() *bridge.Ports
}

// Factory builds the UI application mounted at mount.
type Factory interface {
	NewApp(ctx context.Context, mount string, payload Payload) (App, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, mount string, payload Payload) (App, error)

// NewApp implements Factory.
func (f FactoryFunc) NewApp(ctx context.Context, mount string, payload Payload) (App, error) {
	return f(ctx, mount, payload)
}

// Start resolves the payload, builds the app and wires its ports to glue
// for the lifetime of ctx. A nil glue leaves the ports unserviced.
func Start(ctx context.Context, factory Factory, mount string, resolver *Resolver, glue *bridge.Glue) (App, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	if resolver == nil {
		return nil, ErrNilResolver
	}

	payload := resolver.Resolve(ctx)
	app, err := factory.NewApp(ctx, mount, payload)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: start app: %w", err)
	}

	if glue != nil {
		if ports := app.Ports(); ports != nil {
			if err := bridge.Wire(ctx, ports, glue); err != nil {
				return app, err
			}
		}
	}
	return app, nil
}
