package revocation

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable indicates the backing store could not be reached.
var ErrStoreUnavailable = errors.New("revocation: store unavailable")

// Store maps each subject to its currently active token.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Atomicity: Register replaces the previous token in one step; readers
//   never observe both the old and the new token as active.
// - Context: implementations that perform I/O must honor cancellation.
// - Errors: only infrastructure failures are returned; a missing entry is
//   not an error.
type Store interface {
	// Register records token as the active token for subjectID, superseding
	// any previous one. expiresAt is the token's exp and bounds retention.
	Register(ctx context.Context, subjectID int64, token string, expiresAt time.Time) error

	// IsActive reports whether token is the active token of some subject.
	IsActive(ctx context.Context, token string) (bool, error)

	// Evict removes subjectID's entry.
	Evict(ctx context.Context, subjectID int64) error

	// EvictToken removes the entry owning token, if token is still active.
	// It reports whether an entry was removed. A concurrent re-issue for the
	// same subject is never undone by evicting the older token.
	EvictToken(ctx context.Context, token string) (bool, error)
}
