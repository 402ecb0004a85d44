package observe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/sessionauth/observe/exporters"
)

// Config selects the telemetry backends of a sessionauth process.
type Config struct {
	ServiceName string
	Version     string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig
}

// TracingConfig selects a span exporter.
type TracingConfig struct {
	Enabled   bool
	Exporter  string  // otlp|jaeger|stdout|none
	SamplePct float64 // fraction of root spans kept, 0.0-1.0
}

// MetricsConfig selects a metrics reader. The prometheus exporter is served
// by Observer.MetricsHandler rather than a listener of its own.
type MetricsConfig struct {
	Enabled  bool
	Exporter string // otlp|prometheus|stdout|none
}

// LoggingConfig selects the zerolog writer.
type LoggingConfig struct {
	Enabled bool
	Level   string // debug|info|warn|error
	Format  string // json|console
}

// Validate reports the first unsupported setting.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if t := c.Tracing; t.Enabled {
		if !slices.Contains(ValidTracingExporters, t.Exporter) {
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, t.Exporter)
		}
		if t.SamplePct < 0 || t.SamplePct > 1 {
			return fmt.Errorf("%w, got: %f", ErrInvalidSamplePct, t.SamplePct)
		}
	}
	if m := c.Metrics; m.Enabled && !slices.Contains(ValidMetricsExporters, m.Exporter) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, m.Exporter)
	}
	if l := c.Logging; l.Enabled {
		if !slices.Contains(ValidLogLevels, l.Level) {
			return fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
		}
		if !slices.Contains(ValidLogFormats, l.Format) {
			return fmt.Errorf("%w: %q", ErrInvalidLogFormat, l.Format)
		}
	}
	return nil
}

// Observer hands out the tracer, meter and logger that the token service,
// the HTTP layer and the CLI share.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Shutdown must honor cancellation/deadlines.
// - Errors: Shutdown is idempotent; later calls return the first result.
type Observer interface {
	Tracer() trace.Tracer
	Meter() metric.Meter
	Logger() Logger

	// MetricsHandler serves the Prometheus scrape endpoint, or returns nil
	// when the prometheus exporter is not configured.
	MetricsHandler() http.Handler

	// Shutdown flushes pending spans and metrics.
	Shutdown(ctx context.Context) error
}

// Logger is a structured logger keyed by context.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
// - Redaction: values of RedactedFields keys are never written.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	WithOp(meta OpMeta) Logger
}

// Field is one structured log field.
type Field struct {
	Key   string
	Value any
}

type observer struct {
	tracer  trace.Tracer
	meter   metric.Meter
	logger  Logger
	scrape  http.Handler
	flushes []func(context.Context) error

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewObserver builds the providers named by cfg and installs them as the
// otel globals. Disabled signals get no-op implementations.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
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

	o := &observer{
		tracer: tracenoop.NewTracerProvider().Tracer("noop"),
		meter:  noop.NewMeterProvider().Meter("noop"),
		logger: newLoggerFor(cfg.Logging),
	}

	if cfg.Tracing.Enabled {
		tp, err := newTracerProvider(ctx, cfg.Tracing, res)
		if err != nil {
			return nil, fmt.Errorf("observe: tracing: %w", err)
		}
		otel.SetTracerProvider(tp)
		o.tracer = tp.Tracer(cfg.ServiceName)
		o.flushes = append(o.flushes, tp.Shutdown)
	}

	if cfg.Metrics.Enabled {
		var eopts exporters.Options
		if cfg.Metrics.Exporter == "prometheus" {
			registry := prometheus.NewRegistry()
			eopts.Registerer = registry
			o.scrape = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		}
		mp, err := newMeterProvider(ctx, cfg.Metrics, res, eopts)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("observe: metrics: %w", err), o.Shutdown(ctx))
		}
		otel.SetMeterProvider(mp)
		o.meter = mp.Meter(cfg.ServiceName)
		o.flushes = append(o.flushes, mp.Shutdown)
	}

	return o, nil
}

func newLoggerFor(cfg LoggingConfig) Logger {
	switch {
	case !cfg.Enabled:
		return NopLogger()
	case cfg.Format == "console":
		return NewConsoleLogger(cfg.Level, os.Stderr)
	default:
		return NewLogger(cfg.Level)
	}
}

func newTracerProvider(ctx context.Context, cfg TracingConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := exporters.NewTracingExporter(ctx, cfg.Exporter, exporters.Options{})
	if err != nil {
		return nil, err
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SamplePct))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func sampler(pct float64) sdktrace.Sampler {
	switch {
	case pct >= 1:
		return sdktrace.AlwaysSample()
	case pct <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(pct)
	}
}

func newMeterProvider(ctx context.Context, cfg MetricsConfig, res *resource.Resource, eopts exporters.Options) (*sdkmetric.MeterProvider, error) {
	reader, err := exporters.NewMetricsReader(ctx, cfg.Exporter, eopts)
	if err != nil {
		return nil, err
	}
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if reader != nil {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

func (o *observer) Tracer() trace.Tracer         { return o.tracer }
func (o *observer) Meter() metric.Meter          { return o.meter }
func (o *observer) Logger() Logger               { return o.logger }
func (o *observer) MetricsHandler() http.Handler { return o.scrape }

func (o *observer) Shutdown(ctx context.Context) error {
	o.shutdownOnce.Do(func() {
		var errs []error
		for _, flush := range o.flushes {
			errs = append(errs, flush(ctx))
		}
		o.shutdownErr = errors.Join(errs...)
	})
	return o.shutdownErr
}
