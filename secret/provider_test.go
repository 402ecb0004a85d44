package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSecret(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEnvProvider(t *testing.T) {
	t.Setenv("SET_VAR", "value")
	t.Setenv("EMPTY_VAR", "")
	p := EnvProvider{}
	ctx := context.Background()

	if got, err := p.Resolve(ctx, "SET_VAR"); err != nil || got != "value" {
		t.Errorf("Resolve(SET_VAR) = %q, %v", got, err)
	}
	if got, err := p.Resolve(ctx, "EMPTY_VAR"); err != nil || got != "" {
		t.Errorf("Resolve(EMPTY_VAR) = %q, %v", got, err)
	}
	if _, err := p.Resolve(ctx, "UNSET_VAR_FOR_TEST"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(unset) error = %v, want ErrNotFound", err)
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	abs := writeSecret(t, dir, "crlf", "windows\r\n")
	writeSecret(t, dir, "plain", "no-newline")
	writeSecret(t, dir, "multi", "line1\nline2\n\n")

	p := &FileProvider{Dir: dir}
	ctx := context.Background()

	tests := []struct {
		ref     string
		want    string
		wantErr error
	}{
		{ref: "plain", want: "no-newline"},
		{ref: abs, want: "windows"},
		{ref: "multi", want: "line1\nline2\n"},
		{ref: "absent", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.ref), func(t *testing.T) {
			got, err := p.Resolve(ctx, tt.ref)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}
