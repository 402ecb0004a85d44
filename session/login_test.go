package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/sessionauth/auth"
)

type stubDirectory struct {
	users   map[string]UserRecord
	secrets map[string]string
	roles   map[int64]auth.Role
	err     error
}

func (d *stubDirectory) VerifyCredentials(_ context.Context, name, secret string) (*UserRecord, error) {
	if d.err != nil {
		return nil, d.err
	}
	rec, ok := d.users[name]
	if !ok || d.secrets[name] != secret {
		return nil, nil
	}
	return &rec, nil
}

func (d *stubDirectory) LookupRole(_ context.Context, id int64) (auth.Role, error) {
	r, ok := d.roles[id]
	if !ok {
		return auth.RoleUnknown, errors.New("no such user")
	}
	return r, nil
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		users: map[string]UserRecord{
			"dr.house": {ID: 42, Name: "dr.house", FullName: "Gregory House"},
			"orphan":   {ID: 77, Name: "orphan"},
		},
		secrets: map[string]string{"dr.house": "vicodin", "orphan": "pw"},
		roles:   map[int64]auth.Role{42: auth.RoleClinician},
	}
}

func TestService_Login(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	dir := newStubDirectory()

	raw, err := f.svc.Login(ctx, dir, "dr.house", "vicodin")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	claims, err := f.svc.Validate(ctx, raw)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.App.SubjectID != 42 || claims.App.SubjectName != "dr.house" || claims.App.Role != "clinician" {
		t.Errorf("claims = %+v", claims.App)
	}
}

func TestService_LoginFailures(t *testing.T) {
	dirErr := errors.New("directory offline")

	tests := []struct {
		name      string
		dir       *stubDirectory
		user      string
		pass      string
		wantErr   error
		rejection bool
	}{
		{name: "wrong password", dir: newStubDirectory(), user: "dr.house", pass: "aspirin", wantErr: ErrInvalidCredentials, rejection: true},
		{name: "unknown user", dir: newStubDirectory(), user: "nobody", pass: "x", wantErr: ErrInvalidCredentials, rejection: true},
		{name: "empty credentials", dir: newStubDirectory(), wantErr: ErrInvalidCredentials, rejection: true},
		{name: "directory error", dir: &stubDirectory{err: dirErr}, user: "dr.house", pass: "vicodin", wantErr: dirErr},
		{name: "role lookup fails", dir: newStubDirectory(), user: "orphan", pass: "pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, time.Hour)

			raw, err := f.svc.Login(context.Background(), tt.dir, tt.user, tt.pass)
			if err == nil || raw != "" {
				t.Fatalf("Login() = %q, %v; want failure", raw, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if IsRejection(err) != tt.rejection {
				t.Errorf("IsRejection() = %v, want %v", IsRejection(err), tt.rejection)
			}
			if f.store.Len() != 0 {
				t.Error("failed login registered a token")
			}
		})
	}
}
