package keys

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/sessionauth/clock"
)

func TestJWK_RoundTrip(t *testing.T) {
	kp, _ := testPairs(t)

	set := kp.JWKS()
	if len(set.Keys) != 1 {
		t.Fatalf("JWKS() has %d keys, want 1", len(set.Keys))
	}
	jwk := set.Keys[0]
	if jwk.Kid != kp.KeyID() || jwk.Alg != "RS256" || jwk.Use != "sig" {
		t.Errorf("JWK header = %+v", jwk)
	}

	pub, err := jwk.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey() error = %v", err)
	}
	if !pub.Equal(kp.PublicKey()) {
		t.Error("decoded JWK differs from the pair's public key")
	}
}

func TestJWK_PublicKeyErrors(t *testing.T) {
	tests := []struct {
		name string
		jwk  JWK
	}{
		{name: "wrong type", jwk: JWK{Kty: "EC", N: "AQAB", E: "AQAB"}},
		{name: "missing n", jwk: JWK{Kty: "RSA", E: "AQAB"}},
		{name: "missing e", jwk: JWK{Kty: "RSA", N: "AQAB"}},
		{name: "bad base64", jwk: JWK{Kty: "RSA", N: "!!", E: "AQAB"}},
		{name: "tiny exponent", jwk: JWK{Kty: "RSA", N: "AQAB", E: "AQ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.jwk.PublicKey(); err == nil {
				t.Error("PublicKey() succeeded, want error")
			}
		})
	}
}

type jwksServer struct {
	*httptest.Server
	fetches atomic.Int32
	fail    atomic.Bool
}

func newJWKSServer(t *testing.T, set JWKSet) *jwksServer {
	t.Helper()
	s := &jwksServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.fetches.Add(1)
		if s.fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(s.Close)
	return s
}

func TestJWKSProvider_FetchAndCache(t *testing.T) {
	kp, _ := testPairs(t)
	srv := newJWKSServer(t, kp.JWKS())
	clk := clock.Fake(time.Unix(1_700_000_000, 0))

	p := NewJWKSProvider(JWKSConfig{URL: srv.URL, CacheTTL: time.Minute, Clock: clk})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		key, err := p.VerificationKey(ctx, kp.KeyID())
		if err != nil {
			t.Fatalf("VerificationKey() error = %v", err)
		}
		if !key.Equal(kp.PublicKey()) {
			t.Fatal("VerificationKey() returned a different key")
		}
	}
	if got := srv.fetches.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}

	clk.Advance(2 * time.Minute)
	if _, err := p.VerificationKey(ctx, kp.KeyID()); err != nil {
		t.Fatalf("VerificationKey() after TTL error = %v", err)
	}
	if got := srv.fetches.Load(); got != 2 {
		t.Errorf("fetches after TTL = %d, want 2", got)
	}
}

func TestJWKSProvider_EmptyKeyIDSelectsSingleKey(t *testing.T) {
	kp, _ := testPairs(t)
	srv := newJWKSServer(t, kp.JWKS())

	p := NewJWKSProvider(JWKSConfig{URL: srv.URL})
	key, err := p.VerificationKey(context.Background(), "")
	if err != nil {
		t.Fatalf("VerificationKey() error = %v", err)
	}
	if !key.Equal(kp.PublicKey()) {
		t.Error("VerificationKey() returned a different key")
	}
}

func TestJWKSProvider_UnknownKey(t *testing.T) {
	kp, _ := testPairs(t)
	srv := newJWKSServer(t, kp.JWKS())

	p := NewJWKSProvider(JWKSConfig{URL: srv.URL})
	_, err := p.VerificationKey(context.Background(), "missing")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("VerificationKey() error = %v, want ErrKeyNotFound", err)
	}
}

func TestJWKSProvider_StaleKeysSurviveFailedRefresh(t *testing.T) {
	kp, _ := testPairs(t)
	srv := newJWKSServer(t, kp.JWKS())
	clk := clock.Fake(time.Unix(1_700_000_000, 0))

	p := NewJWKSProvider(JWKSConfig{URL: srv.URL, CacheTTL: time.Minute, Clock: clk})
	ctx := context.Background()
	if _, err := p.VerificationKey(ctx, kp.KeyID()); err != nil {
		t.Fatalf("VerificationKey() error = %v", err)
	}

	srv.fail.Store(true)
	clk.Advance(time.Hour)

	key, err := p.VerificationKey(ctx, kp.KeyID())
	if err != nil {
		t.Fatalf("VerificationKey() after failed refresh error = %v", err)
	}
	if !key.Equal(kp.PublicKey()) {
		t.Error("fallback returned a different key")
	}
}

func TestJWKSProvider_FetchFailureWithoutCache(t *testing.T) {
	kp, _ := testPairs(t)
	srv := newJWKSServer(t, kp.JWKS())
	srv.fail.Store(true)

	p := NewJWKSProvider(JWKSConfig{URL: srv.URL})
	if _, err := p.VerificationKey(context.Background(), kp.KeyID()); err == nil {
		t.Fatal("VerificationKey() succeeded, want error")
	}
}

func TestJWKSProvider_ConcurrentMissesShareFetch(t *testing.T) {
	kp, _ := testPairs(t)
	release := make(chan struct{})
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		<-release
		_ = json.NewEncoder(w).Encode(kp.JWKS())
	}))
	defer srv.Close()

	p := NewJWKSProvider(JWKSConfig{URL: srv.URL})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.VerificationKey(context.Background(), kp.KeyID()); err != nil {
				t.Errorf("VerificationKey() error = %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := fetches.Load(); got > 2 {
		t.Errorf("fetches = %d, want at most 2", got)
	}
}
