package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestAuthzError(t *testing.T) {
	err := &AuthzError{
		Subject:  7,
		Role:     "patient",
		Resource: "/user/patients",
		Reason:   "role patient not in {clinician}",
	}

	msg := err.Error()
	for _, want := range []string{"subject=7", `role="patient"`, `resource="/user/patients"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	if !errors.Is(err, ErrForbidden) {
		t.Error("AuthzError should match ErrForbidden")
	}
	if errors.Is(err, ErrMissingCredentials) {
		t.Error("AuthzError should not match ErrMissingCredentials")
	}
}

func TestAuthorizerFunc(t *testing.T) {
	called := false
	var authz Authorizer = AuthorizerFunc(func(_ context.Context, req *AuthzRequest) error {
		called = true
		if req.Resource == "/deny" {
			return &AuthzError{Resource: req.Resource, Reason: "denied"}
		}
		return nil
	})

	if err := authz.Authorize(context.Background(), &AuthzRequest{Resource: "/allow"}); err != nil {
		t.Errorf("Authorize(/allow) error = %v", err)
	}
	if err := authz.Authorize(context.Background(), &AuthzRequest{Resource: "/deny"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("Authorize(/deny) error = %v, want ErrForbidden", err)
	}
	if !called {
		t.Error("function was not called")
	}
	if authz.Name() != "func" {
		t.Errorf("Name() = %q, want func", authz.Name())
	}
}
