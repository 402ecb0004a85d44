package revocation

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store. One lock guards both the subject map
// and the token index.
type MemoryStore struct {
	mu        sync.RWMutex
	bySubject map[int64]entry
	byToken   map[string]int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bySubject: make(map[int64]entry),
		byToken:   make(map[string]int64),
	}
}

// Register records token for subjectID.
func (s *MemoryStore) Register(_ context.Context, subjectID int64, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.bySubject[subjectID]; ok {
		delete(s.byToken, prev.token)
	}
	if owner, ok := s.byToken[token]; ok && owner != subjectID {
		delete(s.bySubject, owner)
	}

	s.bySubject[subjectID] = entry{token: token, expiresAt: expiresAt}
	s.byToken[token] = subjectID
	return nil
}

// IsActive reports whether token is some subject's active token.
func (s *MemoryStore) IsActive(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	_, ok := s.byToken[token]
	s.mu.RUnlock()
	return ok, nil
}

// Evict removes subjectID's entry.
func (s *MemoryStore) Evict(_ context.Context, subjectID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.bySubject[subjectID]; ok {
		delete(s.byToken, e.token)
		delete(s.bySubject, subjectID)
	}
	return nil
}

// EvictToken removes the entry owning token.
func (s *MemoryStore) EvictToken(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subjectID, ok := s.byToken[token]
	if !ok {
		return false, nil
	}
	delete(s.byToken, token)
	delete(s.bySubject, subjectID)
	return true, nil
}

// Lookup returns the active token for subjectID.
func (s *MemoryStore) Lookup(subjectID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.bySubject[subjectID]
	return e.token, ok
}

// Len returns the number of subjects with an entry.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bySubject)
}

// Purge removes entries whose expiry is at or before now and returns how
// many were removed. Validation already evicts expired tokens it sees;
// Purge reclaims those that are never presented again.
func (s *MemoryStore) Purge(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for subjectID, e := range s.bySubject {
		if e.expiresAt.IsZero() || now.Before(e.expiresAt) {
			continue
		}
		delete(s.byToken, e.token)
		delete(s.bySubject, subjectID)
		removed++
	}
	return removed
}

var _ Store = (*MemoryStore)(nil)
