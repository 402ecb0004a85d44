package revocation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/sessionauth/resilience"
)

func newTestRedis(t *testing.T, cfg RedisConfig) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreWithClient(client, cfg)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		s, _ := newTestRedis(t, RedisConfig{})
		return s
	})
}

func TestNewRedisStore_RequiresAddr(t *testing.T) {
	if _, err := NewRedisStore(RedisConfig{}); err == nil {
		t.Fatal("NewRedisStore() without addr succeeded")
	}
}

func TestRedisStore_NeverStoresRawToken(t *testing.T) {
	s, mr := newTestRedis(t, RedisConfig{KeyPrefix: "test:"})
	ctx := context.Background()
	const raw = "eyJhbGciOiJSUzI1NiJ9.payload.signature"

	if err := s.Register(ctx, 42, raw, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for _, key := range mr.Keys() {
		if !strings.HasPrefix(key, "test:") {
			t.Errorf("key %q is missing the prefix", key)
		}
		if strings.Contains(key, raw) {
			t.Errorf("key %q contains the raw token", key)
		}
		if v, err := mr.Get(key); err == nil && strings.Contains(v, raw) {
			t.Errorf("value of %q contains the raw token", key)
		}
	}

	got, err := mr.Get("test:subject:42")
	if err != nil {
		t.Fatalf("subject key missing: %v", err)
	}
	if got != digestOf(raw) {
		t.Errorf("subject value = %q, want digest", got)
	}
}

func TestRedisStore_RetentionOutlivesExpiry(t *testing.T) {
	s, mr := newTestRedis(t, RedisConfig{Retention: time.Minute})
	ctx := context.Background()

	if err := s.Register(ctx, 1, "tok", time.Now().Add(5*time.Second)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Past the token's expiry but inside retention: still indexed so the
	// caller can report expiry and evict.
	mr.FastForward(10 * time.Second)
	if ok, _ := s.IsActive(ctx, "tok"); !ok {
		t.Error("entry dropped before retention elapsed")
	}

	mr.FastForward(2 * time.Minute)
	if ok, _ := s.IsActive(ctx, "tok"); ok {
		t.Error("entry survived past retention")
	}
}

func TestRedisStore_Unavailable(t *testing.T) {
	s, mr := newTestRedis(t, RedisConfig{})
	mr.Close()
	ctx := context.Background()

	if err := s.Ping(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Ping() error = %v, want ErrStoreUnavailable", err)
	}
	if _, err := s.IsActive(ctx, "tok"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("IsActive() error = %v, want ErrStoreUnavailable", err)
	}
	if err := s.Register(ctx, 1, "tok", time.Now().Add(time.Minute)); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Register() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestRedisStore_BreakerOpensOnOutage(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures:  2,
		ResetTimeout: time.Hour,
	})
	s, mr := newTestRedis(t, RedisConfig{Breaker: cb})
	mr.Close()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _ = s.IsActive(ctx, "tok")
	}
	if cb.State() != resilience.StateOpen {
		t.Fatalf("breaker state = %v, want open", cb.State())
	}

	_, err := s.IsActive(ctx, "tok")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("IsActive() error = %v, want ErrCircuitOpen", err)
	}
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("IsActive() error = %v, want ErrStoreUnavailable", err)
	}
}
