package health

import "errors"

var (
	// ErrNoPinger indicates a ping checker was built without a target.
	ErrNoPinger = errors.New("health: no pinger configured")

	// ErrCheckTimeout indicates a check did not answer within the
	// aggregator timeout.
	ErrCheckTimeout = errors.New("health: check timed out")

	// ErrCheckerNotFound indicates no checker is registered under a name.
	ErrCheckerNotFound = errors.New("health: no such checker")
)
