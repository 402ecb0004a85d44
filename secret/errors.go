package secret

import "errors"

var (
	// ErrMissingEnv indicates a referenced environment variable is unset.
	ErrMissingEnv = errors.New("secret: missing required environment variables")

	// ErrUnknownProvider indicates a secretref names an unregistered provider.
	ErrUnknownProvider = errors.New("secret: provider is not registered")

	// ErrEmptyValue indicates a strict resolver received an empty secret.
	ErrEmptyValue = errors.New("secret: provider returned empty value")

	// ErrNotFound indicates the provider has no secret for the ref.
	ErrNotFound = errors.New("secret: not found")

	// ErrInvalidRegistration indicates a blank name or nil factory.
	ErrInvalidRegistration = errors.New("secret: invalid provider registration")
)
