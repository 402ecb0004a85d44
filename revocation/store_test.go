package revocation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// runStoreContract exercises behavior every Store must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	active := func(t *testing.T, s Store, token string) bool {
		t.Helper()
		ok, err := s.IsActive(ctx, token)
		if err != nil {
			t.Fatalf("IsActive() error = %v", err)
		}
		return ok
	}

	t.Run("register makes token active", func(t *testing.T) {
		s := newStore(t)
		if active(t, s, "tok-a") {
			t.Fatal("unregistered token reported active")
		}
		if err := s.Register(ctx, 1, "tok-a", exp); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if !active(t, s, "tok-a") {
			t.Error("registered token not active")
		}
	})

	t.Run("re-register supersedes previous token", func(t *testing.T) {
		s := newStore(t)
		_ = s.Register(ctx, 7, "tok-a", exp)
		_ = s.Register(ctx, 7, "tok-b", exp)

		if active(t, s, "tok-a") {
			t.Error("superseded token still active")
		}
		if !active(t, s, "tok-b") {
			t.Error("new token not active")
		}
	})

	t.Run("subjects are independent", func(t *testing.T) {
		s := newStore(t)
		_ = s.Register(ctx, 1, "tok-1", exp)
		_ = s.Register(ctx, 2, "tok-2", exp)
		_ = s.Evict(ctx, 1)

		if active(t, s, "tok-1") {
			t.Error("evicted token still active")
		}
		if !active(t, s, "tok-2") {
			t.Error("other subject's token was evicted")
		}
	})

	t.Run("evict missing subject is a no-op", func(t *testing.T) {
		s := newStore(t)
		if err := s.Evict(ctx, 99); err != nil {
			t.Errorf("Evict() error = %v", err)
		}
	})

	t.Run("evict token removes owner entry", func(t *testing.T) {
		s := newStore(t)
		_ = s.Register(ctx, 42, "tok-a", exp)

		removed, err := s.EvictToken(ctx, "tok-a")
		if err != nil {
			t.Fatalf("EvictToken() error = %v", err)
		}
		if !removed {
			t.Error("EvictToken() = false, want true")
		}
		if active(t, s, "tok-a") {
			t.Error("token still active after EvictToken")
		}

		// The subject slot is free: a fresh token registers cleanly.
		_ = s.Register(ctx, 42, "tok-b", exp)
		if !active(t, s, "tok-b") {
			t.Error("re-registered token not active")
		}
	})

	t.Run("evict stale token keeps newer token", func(t *testing.T) {
		s := newStore(t)
		_ = s.Register(ctx, 42, "tok-old", exp)
		_ = s.Register(ctx, 42, "tok-new", exp)

		removed, err := s.EvictToken(ctx, "tok-old")
		if err != nil {
			t.Fatalf("EvictToken() error = %v", err)
		}
		if removed {
			t.Error("EvictToken() removed a superseded token's entry")
		}
		if !active(t, s, "tok-new") {
			t.Error("newer token lost by evicting the older one")
		}
	})

	t.Run("concurrent re-issue leaves exactly one active token", func(t *testing.T) {
		s := newStore(t)
		const n = 32
		tokens := make([]string, n)
		for i := range tokens {
			tokens[i] = fmt.Sprintf("tok-%02d", i)
		}

		var wg sync.WaitGroup
		for _, tok := range tokens {
			wg.Add(1)
			go func(tok string) {
				defer wg.Done()
				if err := s.Register(ctx, 5, tok, exp); err != nil {
					t.Errorf("Register() error = %v", err)
				}
			}(tok)
		}
		wg.Wait()

		count := 0
		for _, tok := range tokens {
			if active(t, s, tok) {
				count++
			}
		}
		if count != 1 {
			t.Errorf("%d tokens active for one subject, want 1", count)
		}
	})
}
