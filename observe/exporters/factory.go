// Package exporters builds OpenTelemetry span exporters and metric readers
// by name.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	// ErrUnknown indicates an exporter name with no factory.
	ErrUnknown = errors.New("exporters: unknown exporter")

	// ErrNoEndpoint indicates OTLP was selected without an endpoint.
	ErrNoEndpoint = errors.New("exporters: OTLP endpoint not configured")
)

type spanFactory func(ctx context.Context) (sdktrace.SpanExporter, error)

type readerFactory func(ctx context.Context) (sdkmetric.Reader, error)

var spanFactories = map[string]spanFactory{
	"stdout": func(context.Context) (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
	},
	"otlp": func(ctx context.Context) (sdktrace.SpanExporter, error) {
		if err := requireEndpoint("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx)
	},
}

var readerFactories = map[string]readerFactory{
	"stdout": func(context.Context) (sdkmetric.Reader, error) {
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stdout))
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil
	},
	"otlp": func(ctx context.Context) (sdkmetric.Reader, error) {
		if err := requireEndpoint("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); err != nil {
			return nil, err
		}
		exp, err := otlpmetricgrpc.New(ctx)
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil
	},
	// Registers with the default Prometheus registerer, which promhttp serves.
	"prometheus": func(context.Context) (sdkmetric.Reader, error) {
		return prometheus.New()
	},
}

// Disabled reports whether name turns a signal off.
func Disabled(name string) bool {
	return name == "" || name == "none"
}

// SupportsSpans reports whether name is a known span exporter or disables
// tracing.
func SupportsSpans(name string) bool {
	_, ok := spanFactories[name]
	return ok || Disabled(name)
}

// SupportsMetrics reports whether name is a known metric reader or disables
// metrics.
func SupportsMetrics(name string) bool {
	_, ok := readerFactories[name]
	return ok || Disabled(name)
}

// SpanExporter builds the named span exporter. A disabled name yields nil.
func SpanExporter(ctx context.Context, name string) (sdktrace.SpanExporter, error) {
	if Disabled(name) {
		return nil, nil
	}
	f, ok := spanFactories[name]
	if !ok {
		return nil, fmt.Errorf("%w: traces %q", ErrUnknown, name)
	}
	exp, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s span exporter: %w", name, err)
	}
	return exp, nil
}

// MetricReader builds the named metric reader. A disabled name yields nil.
func MetricReader(ctx context.Context, name string) (sdkmetric.Reader, error) {
	if Disabled(name) {
		return nil, nil
	}
	f, ok := readerFactories[name]
	if !ok {
		return nil, fmt.Errorf("%w: metrics %q", ErrUnknown, name)
	}
	r, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s metric reader: %w", name, err)
	}
	return r, nil
}

func requireEndpoint(signalVar string) error {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" || os.Getenv(signalVar) != "" {
		return nil
	}
	return fmt.Errorf("%w: set OTEL_EXPORTER_OTLP_ENDPOINT or %s", ErrNoEndpoint, signalVar)
}
