package keys

import (
	"context"
	"crypto/rsa"
)

// Provider resolves the public key that verifies a token.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: implementations that perform I/O must honor cancellation.
// - Errors: returns ErrKeyNotFound when no key matches keyID.
type Provider interface {
	// VerificationKey returns the key for keyID. An empty keyID selects the
	// provider's only key when it has exactly one.
	VerificationKey(ctx context.Context, keyID string) (*rsa.PublicKey, error)
}

// VerificationKey returns the pair's public key when keyID is empty or
// matches the pair's thumbprint.
func (k *KeyPair) VerificationKey(_ context.Context, keyID string) (*rsa.PublicKey, error) {
	if keyID != "" && keyID != k.kid {
		return nil, ErrKeyNotFound
	}
	return k.public, nil
}

// ProviderFunc adapts an ordinary function to a Provider.
type ProviderFunc func(ctx context.Context, keyID string) (*rsa.PublicKey, error)

// VerificationKey calls f.
func (f ProviderFunc) VerificationKey(ctx context.Context, keyID string) (*rsa.PublicKey, error) {
	return f(ctx, keyID)
}

var (
	_ Provider = (*KeyPair)(nil)
	_ Provider = ProviderFunc(nil)
)
