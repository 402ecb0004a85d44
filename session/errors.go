package session

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is matched by every AuthError.
var ErrUnauthenticated = errors.New("session: unauthenticated")

// Per-reason sentinels, each also matching ErrUnauthenticated when carried
// by an AuthError.
var (
	ErrTokenInvalid       = errors.New("session: malformed or forged token")
	ErrTokenSuperseded    = errors.New("session: token superseded or unknown")
	ErrTokenExpired       = errors.New("session: token expired")
	ErrInvalidCredentials = errors.New("session: invalid credentials")
)

// ErrInvalidConfig indicates an unusable Config.
var ErrInvalidConfig = errors.New("session: invalid configuration")

// Reason classifies an authentication rejection.
type Reason string

const (
	ReasonInvalid     Reason = "invalid"
	ReasonSuperseded  Reason = "superseded"
	ReasonExpired     Reason = "expired"
	ReasonCredentials Reason = "invalid_credentials"
)

func (r Reason) sentinel() error {
	switch r {
	case ReasonInvalid:
		return ErrTokenInvalid
	case ReasonSuperseded:
		return ErrTokenSuperseded
	case ReasonExpired:
		return ErrTokenExpired
	case ReasonCredentials:
		return ErrInvalidCredentials
	default:
		return nil
	}
}

// AuthError is a rejected authentication attempt.
type AuthError struct {
	Reason Reason
	Cause  error
}

// Error returns the error message.
func (e *AuthError) Error() string {
	msg := "unauthenticated"
	if s := e.Reason.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Is matches ErrUnauthenticated and the sentinel for e.Reason.
func (e *AuthError) Is(target error) bool {
	if target == ErrUnauthenticated {
		return true
	}
	s := e.Reason.sentinel()
	return s != nil && target == s
}

// Unwrap returns the underlying cause.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// RejectReason returns the reason as a string.
func (e *AuthError) RejectReason() string {
	return string(e.Reason)
}

func reject(reason Reason, cause error) error {
	return &AuthError{Reason: reason, Cause: cause}
}
