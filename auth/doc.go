// Package auth gates requests on the role carried in validated session
// claims.
//
// Roles form a closed enumeration (patient, clinician, caregiver). A
// RoleTable maps the names found in tokens to roles with exact matching.
// Gate.Require is pure and fails closed: an empty allowed set, a missing
// role, or a name outside the table is Forbidden.
//
// The package also extracts bearer credentials from HTTP requests and
// carries the authenticated Identity through a context.
package auth
