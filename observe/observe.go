package observe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/wxshell/observe/exporters"
)

// Config selects exporters and the log level. An empty or "none" exporter
// turns that signal off.
type Config struct {
	ServiceName     string
	Version         string
	TraceExporter   string  // stdout|otlp|none
	TraceSample     float64 // fraction of traces kept
	MetricsExporter string  // stdout|otlp|prometheus|none
	LogLevel        string  // debug|info|warn|error

	// LogOutput defaults to os.Stderr.
	LogOutput io.Writer
}

// Validate checks names and ranges without building anything.
func (c Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if !exporters.SupportsSpans(c.TraceExporter) {
		return fmt.Errorf("%w: traces %q", ErrInvalidExporter, c.TraceExporter)
	}
	if !exporters.Disabled(c.TraceExporter) && (c.TraceSample < 0 || c.TraceSample > 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidSample, c.TraceSample)
	}
	if !exporters.SupportsMetrics(c.MetricsExporter) {
		return fmt.Errorf("%w: metrics %q", ErrInvalidExporter, c.MetricsExporter)
	}
	if _, ok := ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}

// Telemetry owns the providers built from a Config and the fetch
// middleware bound to them.
type Telemetry struct {
	logger Logger
	mw     *Middleware
	tp     *sdktrace.TracerProvider
	mp     *sdkmetric.MeterProvider
}

// New builds the logger and, for enabled signals, the OpenTelemetry
// providers. Enabled providers are installed as the otel globals.
func New(ctx context.Context, cfg Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}

	t := &Telemetry{}
	var tracer trace.Tracer = tracenoop.NewTracerProvider().Tracer(cfg.ServiceName)
	var meter metric.Meter = metricnoop.NewMeterProvider().Meter(cfg.ServiceName)

	if !exporters.Disabled(cfg.TraceExporter) {
		if t.tp, err = newTracerProvider(ctx, cfg, res); err != nil {
			return nil, err
		}
		tracer = t.tp.Tracer(cfg.ServiceName)
	}
	if !exporters.Disabled(cfg.MetricsExporter) {
		if t.mp, err = newMeterProvider(ctx, cfg, res); err != nil {
			_ = t.Shutdown(ctx)
			return nil, err
		}
		meter = t.mp.Meter(cfg.ServiceName)
	}

	out := cfg.LogOutput
	if out == nil {
		out = os.Stderr
	}
	t.logger = NewLoggerWithWriter(cfg.LogLevel, out).With(F("service", cfg.ServiceName))

	metrics, err := NewMetrics(meter)
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, fmt.Errorf("observe: instruments: %w", err)
	}
	t.mw = NewMiddleware(NewTracer(tracer), metrics, t.logger)
	return t, nil
}

func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exp, err := exporters.SpanExporter(ctx, cfg.TraceExporter)
	if err != nil {
		return nil, fmt.Errorf("observe: tracing: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.TraceSample))),
		sdktrace.WithBatcher(exp),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

func sampler(fraction float64) sdktrace.Sampler {
	switch {
	case fraction >= 1:
		return sdktrace.AlwaysSample()
	case fraction <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(fraction)
	}
}

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	reader, err := exporters.MetricReader(ctx, cfg.MetricsExporter)
	if err != nil {
		return nil, fmt.Errorf("observe: metrics: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Logger returns the service logger.
func (t *Telemetry) Logger() Logger { return t.logger }

// Middleware returns the fetch middleware bound to the providers.
func (t *Telemetry) Middleware() *Middleware { return t.mw }

// Shutdown flushes and stops enabled providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tp != nil {
		if err := t.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if t.mp != nil {
		if err := t.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
