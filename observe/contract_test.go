package observe

import (
	"context"
	"testing"
	"time"
)

func TestObserverContract_Noops(t *testing.T) {
	cfg := Config{
		ServiceName: "observe-test",
		Tracing:     TracingConfig{Enabled: false, Exporter: "none"},
		Metrics:     MetricsConfig{Enabled: false, Exporter: "none"},
		Logging:     LoggingConfig{Enabled: false, Level: "info"},
	}

	obs, err := NewObserver(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewObserver failed: %v", err)
	}

	if obs.Tracer() == nil {
		t.Fatalf("expected non-nil tracer")
	}
	if obs.Meter() == nil {
		t.Fatalf("expected non-nil meter")
	}
	if obs.Logger() == nil {
		t.Fatalf("expected non-nil logger")
	}
	if obs.MetricsHandler() != nil {
		t.Fatalf("expected nil metrics handler without prometheus")
	}
}

func TestLoggerContract_WithOp(t *testing.T) {
	logger := NopLogger()
	if logger.WithOp(OpMeta{Name: "noop"}) == nil {
		t.Fatalf("WithOp should return non-nil logger")
	}
}

func TestMetricsContract_NoPanic(t *testing.T) {
	metrics := &noopMetrics{}
	metrics.RecordOp(context.Background(), OpMeta{Name: "noop"}, 10*time.Millisecond, nil)
}

func TestTracerContract_NoPanic(t *testing.T) {
	tracer := newNoopTracer()
	_, span := tracer.StartSpan(context.Background(), OpMeta{Name: "noop"})
	tracer.EndSpan(span, nil)
}
