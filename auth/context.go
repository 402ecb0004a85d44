package auth

import "context"

type identityKey struct{}

// WithIdentity attaches the identity of an authenticated request.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity set by WithIdentity, or nil
// when the request was never authenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

// SubjectFromContext returns the authenticated subject id, or zero.
func SubjectFromContext(ctx context.Context) int64 {
	if id := IdentityFromContext(ctx); id != nil {
		return id.SubjectID
	}
	return 0
}
