package revocation

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, func(*testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStore_Lookup(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok := s.Lookup(1); ok {
		t.Fatal("Lookup() on empty store found an entry")
	}
	_ = s.Register(ctx, 1, "tok-a", time.Now().Add(time.Minute))
	_ = s.Register(ctx, 1, "tok-b", time.Now().Add(time.Minute))

	tok, ok := s.Lookup(1)
	if !ok || tok != "tok-b" {
		t.Errorf("Lookup() = %q, %v; want tok-b, true", tok, ok)
	}
	if got := s.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestMemoryStore_Purge(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Unix(1_760_000_000, 0)

	_ = s.Register(ctx, 1, "expired", now.Add(-time.Second))
	_ = s.Register(ctx, 2, "at-expiry", now)
	_ = s.Register(ctx, 3, "live", now.Add(time.Minute))

	if removed := s.Purge(now); removed != 2 {
		t.Errorf("Purge() = %d, want 2", removed)
	}
	if got := s.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
	for _, tok := range []string{"expired", "at-expiry"} {
		if ok, _ := s.IsActive(ctx, tok); ok {
			t.Errorf("purged token %q still active", tok)
		}
	}
	if ok, _ := s.IsActive(ctx, "live"); !ok {
		t.Error("live token was purged")
	}
}

func TestMemoryStore_ReusedTokenMovesOwnership(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	exp := time.Now().Add(time.Minute)

	_ = s.Register(ctx, 1, "shared", exp)
	_ = s.Register(ctx, 2, "shared", exp)

	if _, ok := s.Lookup(1); ok {
		t.Error("first owner kept an entry whose token moved")
	}
	if tok, ok := s.Lookup(2); !ok || tok != "shared" {
		t.Errorf("Lookup(2) = %q, %v", tok, ok)
	}
	_ = s.Evict(ctx, 2)
	if ok, _ := s.IsActive(ctx, "shared"); ok {
		t.Error("token active after its owner was evicted")
	}
}
