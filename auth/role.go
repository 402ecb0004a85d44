package auth

import (
	"fmt"
	"sort"
	"strings"
)

// Role is the closed set of subject classifications. The numeric values
// match the user type codes stored by the user directory.
type Role int

const (
	// RoleUnknown is the zero value and is never authorized.
	RoleUnknown Role = iota
	RolePatient
	RoleClinician
	RoleCaregiver
)

// AllRoles lists every valid role.
var AllRoles = []Role{RolePatient, RoleClinician, RoleCaregiver}

// String returns the canonical role name.
func (r Role) String() string {
	switch r {
	case RolePatient:
		return "patient"
	case RoleClinician:
		return "clinician"
	case RoleCaregiver:
		return "caregiver"
	default:
		return "unknown"
	}
}

// Valid reports whether r is a member of the closed set.
func (r Role) Valid() bool {
	return r >= RolePatient && r <= RoleCaregiver
}

// RoleSet is an immutable set of roles.
type RoleSet uint8

// Roles builds a RoleSet. Invalid roles are ignored.
func Roles(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		if r.Valid() {
			s |= 1 << uint(r)
		}
	}
	return s
}

// Contains reports whether r is in the set.
func (s RoleSet) Contains(r Role) bool {
	return r.Valid() && s&(1<<uint(r)) != 0
}

// Empty reports whether the set has no members.
func (s RoleSet) Empty() bool {
	return s == 0
}

// Members returns the roles in ascending order.
func (s RoleSet) Members() []Role {
	var out []Role
	for _, r := range AllRoles {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) String() string {
	names := make([]string, 0, len(AllRoles))
	for _, r := range s.Members() {
		names = append(names, r.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// RoleTable maps the role names carried in tokens to roles. Lookups are
// exact: no case folding or trimming.
type RoleTable struct {
	byName map[string]Role
	byRole map[Role]string
}

// DefaultRoles maps the canonical names of AllRoles.
func DefaultRoles() *RoleTable {
	t := &RoleTable{
		byName: make(map[string]Role, len(AllRoles)),
		byRole: make(map[Role]string, len(AllRoles)),
	}
	for _, r := range AllRoles {
		t.byName[r.String()] = r
		t.byRole[r] = r.String()
	}
	return t
}

// NewRoleTable builds a table from name to role. Every name must be
// non-empty, every role valid, and no role may have two names.
func NewRoleTable(names map[string]Role) (*RoleTable, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: role table is empty", ErrUnknownRole)
	}
	t := &RoleTable{
		byName: make(map[string]Role, len(names)),
		byRole: make(map[Role]string, len(names)),
	}

	keys := make([]string, 0, len(names))
	for name := range names {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	for _, name := range keys {
		r := names[name]
		if name == "" {
			return nil, fmt.Errorf("%w: empty role name", ErrUnknownRole)
		}
		if !r.Valid() {
			return nil, fmt.Errorf("%w: name %q maps to invalid role %d", ErrUnknownRole, name, int(r))
		}
		if other, dup := t.byRole[r]; dup {
			return nil, fmt.Errorf("%w: role %s named both %q and %q", ErrUnknownRole, r, other, name)
		}
		t.byName[name] = r
		t.byRole[r] = name
	}
	return t, nil
}

// ParseRoleNames builds a table from name to canonical role name, as read
// from configuration.
func ParseRoleNames(names map[string]string) (*RoleTable, error) {
	canonical := make(map[string]Role, len(AllRoles))
	for _, r := range AllRoles {
		canonical[r.String()] = r
	}

	mapped := make(map[string]Role, len(names))
	for name, target := range names {
		r, ok := canonical[target]
		if !ok {
			return nil, fmt.Errorf("%w: %q maps to %q", ErrUnknownRole, name, target)
		}
		mapped[name] = r
	}
	return NewRoleTable(mapped)
}

// Lookup resolves a token role name.
func (t *RoleTable) Lookup(name string) (Role, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Name returns the token role name for r.
func (t *RoleTable) Name(r Role) (string, bool) {
	name, ok := t.byRole[r]
	return name, ok
}
