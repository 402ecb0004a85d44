package observe

import (
	"errors"
)

// Configuration errors.
var (
	// ErrMissingServiceName indicates Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("observe: service name is required")

	// ErrInvalidSamplePct indicates Tracing.SamplePct is not in [0.0, 1.0].
	ErrInvalidSamplePct = errors.New("observe: sample percentage must be between 0.0 and 1.0")

	// ErrInvalidTracingExporter indicates an unknown tracing exporter name.
	ErrInvalidTracingExporter = errors.New("observe: unknown tracing exporter")

	// ErrInvalidMetricsExporter indicates an unknown metrics exporter name.
	ErrInvalidMetricsExporter = errors.New("observe: unknown metrics exporter")

	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("observe: unknown log level")

	// ErrInvalidLogFormat indicates an unknown log format.
	ErrInvalidLogFormat = errors.New("observe: unknown log format")
)

// ErrMissingOpName indicates OpMeta.Name is empty.
var ErrMissingOpName = errors.New("observe: operation name is required")

// ValidTracingExporters lists valid tracing exporter names.
var ValidTracingExporters = []string{"otlp", "jaeger", "stdout", "none", ""}

// ValidMetricsExporters lists valid metrics exporter names.
var ValidMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}

// ValidLogLevels lists valid log level names.
var ValidLogLevels = []string{"debug", "info", "warn", "error", ""}

// ValidLogFormats lists valid log output formats.
var ValidLogFormats = []string{"json", "console", ""}

// RedactedFields lists field keys whose values never reach log output.
var RedactedFields = []string{
	"password",
	"passphrase",
	"secret",
	"token",
	"user_pass",
	"authorization",
	"credential",
}

// Reasoner is implemented by errors that carry a stable, low-cardinality
// rejection reason such as "expired" or "superseded".
type Reasoner interface {
	RejectReason() string
}

// ReasonOf returns the rejection reason carried by err, "error" when err
// carries none, and "" for nil.
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	var r Reasoner
	if errors.As(err, &r) {
		return r.RejectReason()
	}
	return "error"
}

func isRejection(err error) bool {
	var r Reasoner
	return errors.As(err, &r)
}
