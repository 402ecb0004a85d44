// Package observe instruments authentication operations with OpenTelemetry
// traces and metrics and zerolog structured logs.
//
// Operations are described by OpMeta. Middleware.Wrap runs an operation
// inside a span, records auth.op.* metrics, and logs the outcome. A
// rejection is logged at warn with its reason; any other failure at error.
package observe
