package observe

import (
	"context"
	"io"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// ParseLogLevel parses a level name. Unknown names select info.
func ParseLogLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// zeroLogger adapts a zerolog.Logger to Logger.
type zeroLogger struct {
	zl zerolog.Logger
}

// NewLogger creates a JSON logger on stderr at the given level.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a JSON logger writing to w.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return FromZerolog(zerolog.New(w).With().Timestamp().Logger().Level(ParseLogLevel(level)))
}

// NewConsoleLogger creates a human-readable logger writing to w.
func NewConsoleLogger(level string, w io.Writer) Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return FromZerolog(zerolog.New(cw).With().Timestamp().Logger().Level(ParseLogLevel(level)))
}

// FromZerolog wraps an existing zerolog logger.
func FromZerolog(zl zerolog.Logger) Logger {
	return &zeroLogger{zl: zl}
}

// WithOp returns a logger with operation context attached.
func (l *zeroLogger) WithOp(meta OpMeta) Logger {
	c := l.zl.With().Str("auth.op", meta.OpID())
	if meta.Component != "" {
		c = c.Str("auth.component", meta.Component)
	}
	return &zeroLogger{zl: c.Logger()}
}

func (l *zeroLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, l.zl.Info(), msg, fields)
}

func (l *zeroLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, l.zl.Warn(), msg, fields)
}

func (l *zeroLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, l.zl.Error(), msg, fields)
}

func (l *zeroLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, l.zl.Debug(), msg, fields)
}

func (l *zeroLogger) write(ctx context.Context, ev *zerolog.Event, msg string, fields []Field) {
	// Disabled levels yield a nil event.
	if ev == nil {
		return
	}
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			ev = ev.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
		}
	}
	for _, f := range fields {
		ev = appendField(ev, f)
	}
	ev.Msg(msg)
}

func appendField(ev *zerolog.Event, f Field) *zerolog.Event {
	if isRedactedField(f.Key) {
		return ev.Str(f.Key, "[REDACTED]")
	}
	switch v := f.Value.(type) {
	case string:
		return ev.Str(f.Key, v)
	case int:
		return ev.Int(f.Key, v)
	case int64:
		return ev.Int64(f.Key, v)
	case float64:
		return ev.Float64(f.Key, v)
	case bool:
		return ev.Bool(f.Key, v)
	case time.Duration:
		return ev.Dur(f.Key, v)
	case time.Time:
		return ev.Time(f.Key, v)
	case error:
		return ev.AnErr(f.Key, v)
	default:
		return ev.Interface(f.Key, v)
	}
}

// isRedactedField returns true if the field should be redacted.
func isRedactedField(key string) bool {
	return slices.Contains(RedactedFields, key)
}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger {
	return &noopLogger{}
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (l *noopLogger) Info(ctx context.Context, msg string, fields ...Field)  {}
func (l *noopLogger) Warn(ctx context.Context, msg string, fields ...Field)  {}
func (l *noopLogger) Error(ctx context.Context, msg string, fields ...Field) {}
func (l *noopLogger) Debug(ctx context.Context, msg string, fields ...Field) {}
func (l *noopLogger) WithOp(meta OpMeta) Logger                              { return l }

var (
	_ Logger = (*zeroLogger)(nil)
	_ Logger = (*noopLogger)(nil)
)
