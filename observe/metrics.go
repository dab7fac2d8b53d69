package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricFetchTotal    = "wxshell.fetch.total"
	MetricFetchErrors   = "wxshell.fetch.errors"
	MetricFetchDuration = "wxshell.fetch.duration_ms"
)

// Metrics records intercepted request metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	RecordFetch(ctx context.Context, meta FetchMeta, outcome string, duration time.Duration, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates Metrics backed by meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		MetricFetchTotal,
		metric.WithDescription("Total number of intercepted requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		MetricFetchErrors,
		metric.WithDescription("Intercepted requests whose network fetch failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricFetchDuration,
		metric.WithDescription("Intercepted request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordFetch(ctx context.Context, meta FetchMeta, outcome string, duration time.Duration, err error) {
	attrs := meta.Attributes()
	if outcome != "" {
		attrs = append(attrs, attribute.String("fetch.outcome", outcome))
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

type noopMetrics struct{}

// NewNoopMetrics creates Metrics that record nothing.
func NewNoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordFetch(context.Context, FetchMeta, string, time.Duration, error) {}
