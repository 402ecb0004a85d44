package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jonwraymond/sessionauth/auth"
	"github.com/jonwraymond/sessionauth/resilience"
	"github.com/jonwraymond/sessionauth/revocation"
	"github.com/jonwraymond/sessionauth/session"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// JSON writes data with status.
func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

// Error writes an ErrorResponse with status.
func Error(w http.ResponseWriter, r *http.Request, msg string, status int) {
	JSON(w, r, ErrorResponse{Error: msg, CorrelationID: CorrelationID(r.Context())}, status)
}

// statusOf maps an error to its status and client-facing message. Causes
// of authentication rejections are never shown to the client.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusUnprocessableEntity, "no authorization header provided"
	case errors.Is(err, auth.ErrUnsupportedScheme):
		return http.StatusUnprocessableEntity, "invalid authentication method"
	case errors.Is(err, session.ErrTokenInvalid):
		return http.StatusUnauthorized, "malformed or forged token"
	case errors.Is(err, session.ErrTokenSuperseded):
		return http.StatusUnauthorized, "token superseded or unknown"
	case errors.Is(err, session.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, session.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "client is not a valid user type for this endpoint"
	case errors.Is(err, resilience.ErrRateLimitExceeded):
		return http.StatusTooManyRequests, "too many attempts"
	case errors.Is(err, revocation.ErrStoreUnavailable), errors.Is(err, resilience.ErrBulkheadFull):
		return http.StatusServiceUnavailable, "service unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusOf(err)
	switch {
	case status >= http.StatusInternalServerError:
		log.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("request.failed")
	case session.IsRejection(err):
		log.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("request.rejected")
	}
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "5")
	}
	Error(w, r, msg, status)
}
