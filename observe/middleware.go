package observe

import (
	"context"
	"time"
)

// OpFunc is an instrumented operation.
type OpFunc func(ctx context.Context) error

// Middleware wraps operations with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap returns a thread-safe OpFunc.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
	now     func() time.Time
}

// NewMiddleware creates a Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// Wrap instruments fn as the operation meta. Extra fields are added to the
// outcome log line.
func (m *Middleware) Wrap(meta OpMeta, fn OpFunc, fields ...Field) OpFunc {
	return func(ctx context.Context) error {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := m.now()

		err := fn(ctx)

		duration := m.now().Sub(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordOp(ctx, meta, duration, err)

		opLogger := m.logger.WithOp(meta)
		logFields := append([]Field{{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000}}, fields...)

		switch {
		case err == nil:
			opLogger.Debug(ctx, "operation completed", logFields...)
		case isRejection(err):
			logFields = append(logFields,
				Field{Key: "reason", Value: ReasonOf(err)},
				Field{Key: "error", Value: err.Error()},
			)
			opLogger.Warn(ctx, "operation rejected", logFields...)
		default:
			logFields = append(logFields, Field{Key: "error", Value: err.Error()})
			opLogger.Error(ctx, "operation failed", logFields...)
		}
		return err
	}
}

// Run wraps fn and calls it immediately.
func (m *Middleware) Run(ctx context.Context, meta OpMeta, fn OpFunc, fields ...Field) error {
	return m.Wrap(meta, fn, fields...)(ctx)
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
