package bootstrap

import "errors"

var (
	// ErrNilFactory indicates Start was called without a UI factory.
	ErrNilFactory = errors.New("bootstrap: factory is nil")

	// ErrNilResolver indicates Start was called without a resolver.
	ErrNilResolver = errors.New("bootstrap: resolver is nil")
)
