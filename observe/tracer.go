package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// FetchMeta describes one intercepted request for telemetry purposes.
type FetchMeta struct {
	Strategy string // cache-first, relay, passthrough
	Method   string
	Host     string
	Kind     string // relay kind for dynamic hosts (optional)
}

// SpanName returns the deterministic span name for this request.
// Format: intercept.fetch.<strategy>
func (m FetchMeta) SpanName() string {
	if m.Strategy == "" {
		return "intercept.fetch"
	}
	return "intercept.fetch." + m.Strategy
}

// Attributes returns the common attribute set for spans and metrics.
func (m FetchMeta) Attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("fetch.strategy", m.Strategy),
		attribute.String("fetch.host", m.Host),
	}
	if m.Method != "" {
		attrs = append(attrs, attribute.String("fetch.method", m.Method))
	}
	if m.Kind != "" {
		attrs = append(attrs, attribute.String("fetch.kind", m.Kind))
	}
	return attrs
}

// Fields returns the meta as log fields.
func (m FetchMeta) Fields() []Field {
	fields := []Field{F("strategy", m.Strategy), F("host", m.Host)}
	if m.Method != "" {
		fields = append(fields, F("method", m.Method))
	}
	if m.Kind != "" {
		fields = append(fields, F("kind", m.Kind))
	}
	return fields
}

// Tracer wraps OpenTelemetry tracing with fetch-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	StartSpan(ctx context.Context, meta FetchMeta) (context.Context, trace.Span)
	EndSpan(span trace.Span, outcome string, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta FetchMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(meta.Attributes()...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, outcome string, err error) {
	if outcome != "" {
		span.SetAttributes(attribute.String("fetch.outcome", outcome))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a tracer that records nothing.
func NewNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta FetchMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ string, _ error) {
	span.End()
}
