package observe

import "errors"

var (
	// ErrMissingServiceName indicates Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("observe: service name is required")

	// ErrInvalidSample indicates Config.TraceSample is outside [0, 1].
	ErrInvalidSample = errors.New("observe: trace sample must be between 0 and 1")

	// ErrInvalidExporter indicates an exporter name with no factory.
	ErrInvalidExporter = errors.New("observe: unsupported exporter")

	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("observe: unknown log level")
)
