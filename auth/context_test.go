package auth

import (
	"context"
	"testing"
)

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	if id := IdentityFromContext(ctx); id != nil {
		t.Errorf("IdentityFromContext() on empty context = %+v", id)
	}
	if got := SubjectFromContext(ctx); got != 0 {
		t.Errorf("SubjectFromContext() on empty context = %d", got)
	}

	id := &Identity{SubjectID: 42, Name: "dr.house", Role: RoleClinician, RoleName: "clinician"}
	ctx = WithIdentity(ctx, id)

	if got := IdentityFromContext(ctx); got != id {
		t.Errorf("IdentityFromContext() = %+v, want %+v", got, id)
	}
	if got := SubjectFromContext(ctx); got != 42 {
		t.Errorf("SubjectFromContext() = %d, want 42", got)
	}
}
