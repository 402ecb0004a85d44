package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricOpTotal    = "auth.op.total"
	MetricOpErrors   = "auth.op.errors"
	MetricOpDuration = "auth.op.duration_ms"
)

// Metrics records operation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOp records an operation outcome and its duration.
	RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates Metrics backed by meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		MetricOpTotal,
		metric.WithDescription("Total number of authentication operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		MetricOpErrors,
		metric.WithDescription("Authentication operations that were rejected or failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricOpDuration,
		metric.WithDescription("Authentication operation duration in milliseconds"),
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

// RecordOp records metrics for one operation. Failures carry auth.reason.
func (m *metricsImpl) RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	op := metric.WithAttributes(attribute.String("auth.op", meta.OpID()))

	m.totalCount.Add(ctx, 1, op)
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, op)

	if err != nil {
		m.errorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("auth.op", meta.OpID()),
			attribute.String("auth.reason", ReasonOf(err)),
		))
	}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
}
