package secret

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct {
	name    string
	values  map[string]string
	resolve func(ref string) (string, error)
	closeFn func() error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Resolve(_ context.Context, ref string) (string, error) {
	if s.resolve != nil {
		return s.resolve(ref)
	}
	return s.values[ref], nil
}

func (s *stubProvider) Close() error {
	if s.closeFn != nil {
		return s.closeFn()
	}
	return nil
}

func TestParseSecretRef(t *testing.T) {
	tests := []struct {
		in           string
		wantProvider string
		wantRef      string
		wantOK       bool
	}{
		{"secretref:stub:alpha", "stub", "alpha", true},
		{"secretref:file:/run/secrets/key:v2", "file", "/run/secrets/key:v2", true},
		{"secretref:stub:", "", "", false},
		{"secretref::alpha", "", "", false},
		{"secretref:stub", "", "", false},
		{"not-a-secretref", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			provider, ref, ok := ParseSecretRef(tt.in)
			if provider != tt.wantProvider || ref != tt.wantRef || ok != tt.wantOK {
				t.Errorf("ParseSecretRef() = %q, %q, %v", provider, ref, ok)
			}
		})
	}
}

func TestResolver_ResolveValue(t *testing.T) {
	t.Setenv("KEY_REF", "alpha")
	t.Setenv("KEY_PASSPHRASE", "from-env")

	stub := &stubProvider{name: "stub", values: map[string]string{"alpha": "one", "empty": ""}}
	strict := NewResolver(true, stub)
	lenient := NewResolver(false, stub)

	tests := []struct {
		name     string
		resolver *Resolver
		in       string
		want     string
		wantErr  error
	}{
		{name: "literal", resolver: strict, in: "ButgersBuses", want: "ButgersBuses"},
		{name: "env expansion", resolver: strict, in: "${KEY_PASSPHRASE}", want: "from-env"},
		{name: "full ref", resolver: strict, in: "secretref:stub:alpha", want: "one"},
		{name: "ref built from env", resolver: strict, in: "secretref:stub:${KEY_REF}", want: "one"},
		{name: "inline ref is literal", resolver: strict, in: "x secretref:stub:alpha", want: "x secretref:stub:alpha"},
		{name: "unknown provider", resolver: strict, in: "secretref:vault:alpha", wantErr: ErrUnknownProvider},
		{name: "strict empty ref", resolver: strict, in: "secretref:stub:empty", wantErr: ErrEmptyValue},
		{name: "strict empty literal", resolver: strict, in: "", wantErr: ErrEmptyValue},
		{name: "lenient empty ref", resolver: lenient, in: "secretref:stub:empty", want: ""},
		{name: "missing env", resolver: strict, in: "${NOT_SET_ANYWHERE}", wantErr: ErrMissingEnv},
		{name: "nil resolver expands env", resolver: nil, in: "${KEY_PASSPHRASE}", want: "from-env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.resolver.ResolveValue(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ResolveValue() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolver_ResolveMap(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"alpha": "one"}})

	m, err := r.ResolveMap(context.Background(), map[string]string{"passphrase": "secretref:stub:alpha", "user": "admin"})
	if err != nil {
		t.Fatalf("ResolveMap() error = %v", err)
	}
	if m["passphrase"] != "one" || m["user"] != "admin" {
		t.Fatalf("ResolveMap() = %#v", m)
	}

	if _, err := r.ResolveMap(context.Background(), map[string]string{"k": "secretref:nope:x"}); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("ResolveMap() error = %v, want ErrUnknownProvider", err)
	}
}

func TestResolver_ProviderResolveErrorPropagates(t *testing.T) {
	boom := errors.New("explode")
	r := NewResolver(true, &stubProvider{name: "stub", resolve: func(string) (string, error) {
		return "", boom
	}})

	if _, err := r.ResolveValue(context.Background(), "secretref:stub:boom"); !errors.Is(err, boom) {
		t.Fatalf("ResolveValue() error = %v, want %v", err, boom)
	}
}

func TestResolver_CloseJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	r := NewResolver(true,
		&stubProvider{name: "a", closeFn: func() error { return errA }},
		&stubProvider{name: "b"},
	)
	if err := r.Close(); !errors.Is(err, errA) {
		t.Errorf("Close() error = %v, want %v", err, errA)
	}
	if err := (*Resolver)(nil).Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}
