package auth

import "errors"

// Sentinel errors for request credentials and authorization.
var (
	// Credential extraction errors. These are client errors and are
	// distinct from an invalid token.
	ErrMissingCredentials = errors.New("auth: no authorization header provided")
	ErrUnsupportedScheme  = errors.New("auth: invalid authentication method")

	// ErrUnknownRole indicates a role name outside the configured table.
	ErrUnknownRole = errors.New("auth: unknown role")

	// Authorization errors
	ErrForbidden = errors.New("auth: access denied")
)
