package httpapi

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/jonwraymond/sessionauth/auth"
	"github.com/jonwraymond/sessionauth/observe"
)

const CorrelationIDHeader = "X-Correlation-ID"

type correlationKey struct{}

// CorrelationID returns the request's correlation id, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// CorrelationIDMiddleware propagates the caller's X-Correlation-ID or
// assigns a new one.
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if id == "" {
			id = xid.New().String()
		}
		w.Header().Set(CorrelationIDHeader, id)

		ctx := context.WithValue(r.Context(), correlationKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs one line per request. Health probes that succeed
// are not logged.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		l := log.With().
			Str("correlation_id", CorrelationID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Logger()

		ctx := l.WithContext(r.Context())
		ww := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r.WithContext(ctx))

		if (r.URL.Path == "/healthz" || r.URL.Path == "/readyz") && ww.statusCode < 400 {
			return
		}

		l.Info().
			Int("status", ww.statusCode).
			Dur("duration", time.Since(start)).
			Msg("request.handled")
	})
}

// RecoverMiddleware turns a handler panic into a 500.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Ctx(r.Context()).Error().
					Interface("panic", err).
					Bytes("stack", debug.Stack()).
					Msg("panic.recovered")

				Error(w, r, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// authenticated validates the bearer token, asks the authorizer whether its
// role is in allowed, and stores the caller's identity in the request context.
func (s *Server) authenticated(allowed auth.RoleSet, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw, err := auth.ExtractBearerToken(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		claims, err := s.svc.Validate(ctx, raw)
		if err != nil {
			writeError(w, r, err)
			return
		}

		id := auth.NewIdentity(claims, s.roles)
		req := &auth.AuthzRequest{Subject: id, Resource: r.URL.Path, Allowed: allowed}
		meta := observe.OpMeta{Component: "auth", Name: "authorize"}
		err = s.mw.Run(ctx, meta, func(ctx context.Context) error {
			return s.authz.Authorize(ctx, req)
		}, observe.Field{Key: "subject_id", Value: id.SubjectID}, observe.Field{Key: "path", Value: r.URL.Path})
		if err != nil {
			writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(ctx, id)))
	})
}
