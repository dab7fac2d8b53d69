package intercept

import "errors"

var (
	// ErrNilStorage indicates a Worker was created without cache storage.
	ErrNilStorage = errors.New("intercept: cache storage is nil")

	// ErrInvalidOrigin indicates Config.Origin is not an absolute URL.
	ErrInvalidOrigin = errors.New("intercept: origin must be an absolute URL")
)
