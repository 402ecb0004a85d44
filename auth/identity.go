package auth

import (
	"time"

	"github.com/jonwraymond/sessionauth/token"
)

// Identity is the authenticated subject of a request, derived from
// validated claims.
type Identity struct {
	// SubjectID is the user directory id.
	SubjectID int64

	// Name is the subject's display name.
	Name string

	// RoleName is the role string carried in the token.
	RoleName string

	// Role is RoleName resolved through a RoleTable; RoleUnknown when the
	// name is not in the table.
	Role Role

	// TokenID is the token's jti.
	TokenID string

	// ExpiresAt is when the token expires.
	ExpiresAt time.Time

	// IssuedAt is when the token was issued.
	IssuedAt time.Time

	// Claims are the validated claims.
	Claims *token.Claims
}

// NewIdentity builds an Identity from claims, resolving the role name
// through table.
func NewIdentity(claims *token.Claims, table *RoleTable) *Identity {
	role, _ := table.Lookup(claims.App.Role)
	return &Identity{
		SubjectID: claims.App.SubjectID,
		Name:      claims.App.SubjectName,
		RoleName:  claims.App.Role,
		Role:      role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt,
		IssuedAt:  claims.IssuedAt,
		Claims:    claims,
	}
}

// HasRole checks if the identity carries role.
func (id *Identity) HasRole(role Role) bool {
	return role.Valid() && id.Role == role
}
