package session

import (
	"context"

	"github.com/jonwraymond/sessionauth/auth"
)

// UserRecord is a directory entry.
type UserRecord struct {
	ID       int64
	Name     string
	FullName string
	Role     auth.Role
}

// Directory owns credentials and role assignment.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - VerifyCredentials returns (nil, nil) when name and secret do not match;
//     errors are reserved for lookup failures.
type Directory interface {
	VerifyCredentials(ctx context.Context, name, secret string) (*UserRecord, error)
	LookupRole(ctx context.Context, subjectID int64) (auth.Role, error)
}
