package keys

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/sessionauth/clock"
)

// JWK is a single RSA JSON Web Key.
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid,omitempty"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSet is the document served from a JWKS endpoint.
type JWKSet struct {
	Keys []JWK `json:"keys"`
}

// JWKS returns the public half of the pair as a JWK set.
func (k *KeyPair) JWKS() JWKSet {
	return JWKSet{Keys: []JWK{toJWK(k.public, k.kid)}}
}

func toJWK(pub *rsa.PublicKey, kid string) JWK {
	jwk := JWK{
		Kty: "RSA",
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
	if kid != "" {
		jwk.Kid = kid
		jwk.Use = "sig"
		jwk.Alg = "RS256"
	}
	return jwk
}

// PublicKey decodes the JWK into an RSA public key.
func (j JWK) PublicKey() (*rsa.PublicKey, error) {
	if j.Kty != "RSA" {
		return nil, fmt.Errorf("unsupported key type %q", j.Kty)
	}
	if j.N == "" {
		return nil, fmt.Errorf("missing n parameter")
	}
	if j.E == "" {
		return nil, fmt.Errorf("missing e parameter")
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, fmt.Errorf("decode n: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, fmt.Errorf("decode e: %w", err)
	}
	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() < 3 || e.Int64() > 1<<31-1 {
		return nil, fmt.Errorf("invalid exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}

// JWKSConfig configures the JWKS key provider.
type JWKSConfig struct {
	// URL is the JWKS endpoint URL.
	URL string

	// CacheTTL is how long fetched keys are trusted before a refresh.
	// Default: 1 hour
	CacheTTL time.Duration

	// HTTPClient is used for fetches.
	// Default: a client with a 30s timeout.
	HTTPClient *http.Client

	// Clock drives cache expiry.
	// Default: clock.Real()
	Clock clock.Clock
}

// JWKSProvider resolves verification keys from a remote JWKS endpoint.
// Concurrent misses share one fetch.
type JWKSProvider struct {
	config JWKSConfig

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	fetchedAt   time.Time
	lastFetched map[string]*rsa.PublicKey // survives failed refreshes
	group       singleflight.Group
}

// NewJWKSProvider creates a JWKS-backed Provider.
func NewJWKSProvider(config JWKSConfig) *JWKSProvider {
	if config.CacheTTL == 0 {
		config.CacheTTL = time.Hour
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}

	return &JWKSProvider{
		config:      config,
		keys:        make(map[string]*rsa.PublicKey),
		lastFetched: make(map[string]*rsa.PublicKey),
	}
}

// VerificationKey returns the key for keyID, refreshing the cache when it is
// stale or the key is unknown. A failed refresh falls back to previously
// fetched keys.
func (p *JWKSProvider) VerificationKey(ctx context.Context, keyID string) (*rsa.PublicKey, error) {
	p.mu.RLock()
	fresh := p.config.Clock.Now().Sub(p.fetchedAt) < p.config.CacheTTL
	key := p.lookupLocked(p.keys, keyID)
	p.mu.RUnlock()
	if fresh && key != nil {
		return key, nil
	}

	_, err, _ := p.group.Do("refresh", func() (any, error) {
		return nil, p.refresh(ctx)
	})
	if err != nil {
		p.mu.RLock()
		key := p.lookupLocked(p.keys, keyID)
		if key == nil {
			key = p.lookupLocked(p.lastFetched, keyID)
		}
		p.mu.RUnlock()
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	p.mu.RLock()
	key = p.lookupLocked(p.keys, keyID)
	p.mu.RUnlock()
	if key == nil {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// lookupLocked finds keyID in set. Caller must hold at least RLock.
func (p *JWKSProvider) lookupLocked(set map[string]*rsa.PublicKey, keyID string) *rsa.PublicKey {
	if keyID == "" {
		if len(set) != 1 {
			return nil
		}
		for _, key := range set {
			return key
		}
	}
	return set[keyID]
}

func (p *JWKSProvider) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.URL, nil)
	if err != nil {
		return fmt.Errorf("keys: create JWKS request: %w", err)
	}

	resp, err := p.config.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("keys: fetch JWKS: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("keys: fetch JWKS: unexpected status %d", resp.StatusCode)
	}

	var set JWKSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("keys: decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Alg != "" && jwk.Alg != "RS256" {
			continue
		}
		pub, err := jwk.PublicKey()
		if err != nil {
			continue
		}
		keys[jwk.Kid] = pub
	}

	p.mu.Lock()
	p.keys = keys
	p.fetchedAt = p.config.Clock.Now()
	for kid, key := range keys {
		p.lastFetched[kid] = key
	}
	p.mu.Unlock()

	return nil
}

var _ Provider = (*JWKSProvider)(nil)
