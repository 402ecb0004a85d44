package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/sessionauth/keys"
	"github.com/jonwraymond/sessionauth/token"
)

// KeyPairChecker signs and verifies a probe token with the service key.
type KeyPairChecker struct {
	pair  *keys.KeyPair
	codec *token.Codec
}

// NewKeyPairChecker creates a checker for pair.
func NewKeyPairChecker(pair *keys.KeyPair) *KeyPairChecker {
	return &KeyPairChecker{pair: pair, codec: token.NewCodec(pair)}
}

// Name returns "keys".
func (c *KeyPairChecker) Name() string {
	return "keys"
}

// Check runs the sign and verify probe.
func (c *KeyPairChecker) Check(ctx context.Context) Result {
	details := map[string]any{
		"kid":  c.pair.KeyID(),
		"bits": c.pair.Bits(),
	}

	probe := token.Claims{Issuer: "health-probe", ExpiresAt: time.Now().Add(time.Minute)}
	raw, err := c.codec.Encode(probe)
	if err != nil {
		return Unhealthy("signing probe failed", fmt.Errorf("%w: %w", ErrCheckFailed, err)).WithDetails(details)
	}
	if _, err := c.codec.Decode(ctx, raw); err != nil {
		return Unhealthy("verification probe failed", fmt.Errorf("%w: %w", ErrCheckFailed, err)).WithDetails(details)
	}
	return Healthy("key pair signs and verifies").WithDetails(details)
}
