package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/sessionauth/keys"
)

// Algorithm is the only signing algorithm the codec produces or accepts.
const Algorithm = "RS256"

// Codec signs and verifies session tokens.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: Decode returns errors wrapping ErrMalformed or ErrBadSignature.
type Codec struct {
	signer         *keys.KeyPair
	keys           keys.Provider
	expectedIssuer string
	parser         *jwt.Parser
}

// Option configures a Codec.
type Option func(*Codec)

// WithExpectedIssuer makes Decode reject tokens whose iss differs.
func WithExpectedIssuer(issuer string) Option {
	return func(c *Codec) {
		c.expectedIssuer = issuer
	}
}

// NewCodec creates a codec that signs with pair and verifies against its
// public key.
func NewCodec(pair *keys.KeyPair, opts ...Option) *Codec {
	c := newCodec(pair, opts)
	c.signer = pair
	return c
}

// NewVerifier creates a verify-only codec backed by provider.
func NewVerifier(provider keys.Provider, opts ...Option) *Codec {
	return newCodec(provider, opts)
}

func newCodec(provider keys.Provider, opts []Option) *Codec {
	c := &Codec{
		keys: provider,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{Algorithm}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode signs claims. ExpiresAt is required.
func (c *Codec) Encode(claims Claims) (string, error) {
	if c.signer == nil {
		return "", ErrNoSigningKey
	}
	if claims.ExpiresAt.IsZero() {
		return "", fmt.Errorf("%w: expiry is required", ErrInvalidClaims)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims.toWire())
	tok.Header["kid"] = c.signer.KeyID()

	signed, err := tok.SignedString(c.signer.SigningKey())
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Decode verifies raw and returns its claims. It does not check expiry.
func (c *Codec) Decode(ctx context.Context, raw string) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformed)
	}

	wire := &wireClaims{}
	_, err := c.parser.ParseWithClaims(raw, wire, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return c.keys.VerificationKey(ctx, kid)
	})
	if err != nil {
		return nil, classify(err)
	}

	if wire.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrMalformed)
	}
	if c.expectedIssuer != "" && wire.Issuer != c.expectedIssuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrMalformed, wire.Issuer)
	}

	return wire.toClaims(), nil
}

// classify maps jwt parser errors onto the codec's taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, keys.ErrKeyNotFound):
		return fmt.Errorf("%w: %w", ErrBadSignature, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
