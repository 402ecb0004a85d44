package auth

import (
	"context"
	"fmt"

	"github.com/jonwraymond/sessionauth/token"
)

// Gate checks a subject's role against the roles an endpoint allows.
type Gate struct {
	roles *RoleTable
}

// NewGate creates a Gate resolving role names through roles. A nil table
// selects DefaultRoles.
func NewGate(roles *RoleTable) *Gate {
	if roles == nil {
		roles = DefaultRoles()
	}
	return &Gate{roles: roles}
}

// Roles returns the gate's role table.
func (g *Gate) Roles() *RoleTable {
	return g.roles
}

// Require permits claims whose role is exactly in allowed. It performs no
// I/O. An empty allowed set denies everyone.
func (g *Gate) Require(claims *token.Claims, allowed RoleSet) error {
	if claims == nil {
		return &AuthzError{Reason: "no claims presented"}
	}
	return g.check(claims.App.SubjectID, claims.App.Role, "", allowed)
}

// Name returns "role_gate".
func (g *Gate) Name() string {
	return "role_gate"
}

// Authorize applies Require to an AuthzRequest.
func (g *Gate) Authorize(_ context.Context, req *AuthzRequest) error {
	if req.Subject == nil {
		return &AuthzError{Resource: req.Resource, Reason: "no identity provided"}
	}
	return g.check(req.Subject.SubjectID, req.Subject.RoleName, req.Resource, req.Allowed)
}

func (g *Gate) check(subject int64, roleName, resource string, allowed RoleSet) error {
	deny := func(reason string) error {
		return &AuthzError{Subject: subject, Role: roleName, Resource: resource, Reason: reason}
	}

	if allowed.Empty() {
		return deny("no roles permitted")
	}
	if roleName == "" {
		return deny("missing role")
	}
	role, ok := g.roles.Lookup(roleName)
	if !ok {
		return deny("unrecognized role")
	}
	if !allowed.Contains(role) {
		return deny(fmt.Sprintf("role %s not in %s", role, allowed))
	}
	return nil
}

// Require applies a Gate over DefaultRoles.
func Require(claims *token.Claims, allowed RoleSet) error {
	return defaultGate.Require(claims, allowed)
}

var defaultGate = NewGate(nil)

var _ Authorizer = (*Gate)(nil)
