package auth

import (
	"context"
	"fmt"
)

// Authorizer determines if an identity may access a resource.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: returns nil when permitted, or an error matching ErrForbidden.
type Authorizer interface {
	// Authorize checks if the request is permitted.
	Authorize(ctx context.Context, req *AuthzRequest) error

	// Name returns a unique identifier for this authorizer.
	Name() string
}

// AuthzRequest contains the information needed for authorization.
type AuthzRequest struct {
	// Subject is the authenticated identity.
	Subject *Identity

	// Resource names the protected endpoint (e.g., "/user/patients").
	Resource string

	// Allowed is the set of roles permitted on Resource.
	Allowed RoleSet
}

// AuthzError represents an authorization failure.
type AuthzError struct {
	// Subject is the subject id that was denied, zero if unknown.
	Subject int64

	// Role is the role name the subject presented.
	Role string

	// Resource is the resource that was denied access to.
	Resource string

	// Reason explains why access was denied.
	Reason string
}

// Error returns the error message.
func (e *AuthzError) Error() string {
	return fmt.Sprintf("authorization denied: subject=%d role=%q resource=%q reason=%q",
		e.Subject, e.Role, e.Resource, e.Reason)
}

// Is reports whether this error matches the target.
func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}

// RejectReason returns "forbidden".
func (e *AuthzError) RejectReason() string {
	return "forbidden"
}

// AuthorizerFunc is an adapter to allow use of ordinary functions as Authorizers.
type AuthorizerFunc func(ctx context.Context, req *AuthzRequest) error

// Authorize calls the function.
func (f AuthorizerFunc) Authorize(ctx context.Context, req *AuthzRequest) error {
	return f(ctx, req)
}

// Name returns "func" for function-based authorizers.
func (f AuthorizerFunc) Name() string {
	return "func"
}
