package token

import "errors"

var (
	// ErrMalformed indicates the token is not a structurally valid JWS or
	// its claims cannot be decoded.
	ErrMalformed = errors.New("token: malformed")

	// ErrBadSignature indicates the signature does not verify, the declared
	// algorithm is not RS256, or no verification key matches.
	ErrBadSignature = errors.New("token: bad signature")

	// ErrNoSigningKey indicates Encode was called on a verify-only codec.
	ErrNoSigningKey = errors.New("token: codec has no signing key")

	// ErrInvalidClaims indicates Encode was given claims it refuses to sign.
	ErrInvalidClaims = errors.New("token: invalid claims")
)
