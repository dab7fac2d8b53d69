package observe

import (
	"context"
	"net/http"
	"time"
)

// FetchFunc handles one intercepted request and reports how it was served.
type FetchFunc func(ctx context.Context, meta FetchMeta, req *http.Request) (*http.Response, string, error)

// Middleware wraps request handling with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a FetchFunc safe for concurrent use.
//   - Errors: errors from the wrapped function are recorded and propagated unchanged.
//   - Ownership: responses are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// NopMiddleware returns a Middleware that records nothing.
func NopMiddleware() *Middleware {
	return NewMiddleware(NewNoopTracer(), NewNoopMetrics(), NopLogger())
}

// Wrap wraps fn with tracing, metrics and logging.
func (m *Middleware) Wrap(fn FetchFunc) FetchFunc {
	return func(ctx context.Context, meta FetchMeta, req *http.Request) (*http.Response, string, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		resp, outcome, err := fn(ctx, meta, req)

		duration := time.Since(start)
		m.tracer.EndSpan(span, outcome, err)
		m.metrics.RecordFetch(ctx, meta, outcome, duration, err)

		fields := append(meta.Fields(),
			F("outcome", outcome),
			F("duration_ms", float64(duration.Milliseconds())),
		)
		if err != nil {
			fields = append(fields, F("error", err.Error()))
			m.logger.Warn(ctx, "fetch failed", fields...)
		} else {
			m.logger.Debug(ctx, "fetch completed", fields...)
		}

		return resp, outcome, err
	}
}
