package auth

import (
	"testing"
	"time"

	"github.com/jonwraymond/sessionauth/token"
)

func TestNewIdentity(t *testing.T) {
	exp := time.Unix(1_760_001_200, 0)
	claims := &token.Claims{
		Issuer:    "Agora VR",
		ExpiresAt: exp,
		ID:        "jti-1",
		App:       token.App{SubjectID: 42, SubjectName: "dr.house", Role: "clinician"},
	}

	id := NewIdentity(claims, DefaultRoles())

	if id.SubjectID != 42 || id.Name != "dr.house" {
		t.Errorf("identity = %+v", id)
	}
	if id.Role != RoleClinician || id.RoleName != "clinician" {
		t.Errorf("Role = %v (%q), want clinician", id.Role, id.RoleName)
	}
	if !id.ExpiresAt.Equal(exp) || id.TokenID != "jti-1" {
		t.Errorf("ExpiresAt/TokenID = %v/%q", id.ExpiresAt, id.TokenID)
	}
	if !id.HasRole(RoleClinician) || id.HasRole(RolePatient) {
		t.Error("HasRole() mismatch")
	}
}

func TestNewIdentity_UnknownRole(t *testing.T) {
	claims := &token.Claims{App: token.App{SubjectID: 1, Role: "Patient"}}
	id := NewIdentity(claims, DefaultRoles())

	if id.Role != RoleUnknown {
		t.Errorf("Role = %v, want RoleUnknown", id.Role)
	}
	if id.HasRole(RoleUnknown) {
		t.Error("HasRole(RoleUnknown) = true")
	}
}
