package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves a ref as an environment variable name.
type EnvProvider struct{}

// Name returns "env".
func (EnvProvider) Name() string { return "env" }

// Resolve returns the variable's value, or ErrNotFound when unset.
func (EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrNotFound, ref)
	}
	return v, nil
}

// Close is a no-op.
func (EnvProvider) Close() error { return nil }

// FileProvider resolves a ref as a file path, as mounted by container
// secret stores. A single trailing newline is stripped.
type FileProvider struct {
	// Dir anchors relative refs. Empty means the working directory.
	Dir string
}

// Name returns "file".
func (p *FileProvider) Name() string { return "file" }

// Resolve reads the secret file.
func (p *FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	path := ref
	if p.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(p.Dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: file %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("secret: read %s: %w", path, err)
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

// Close is a no-op.
func (p *FileProvider) Close() error { return nil }

var (
	_ Provider = EnvProvider{}
	_ Provider = (*FileProvider)(nil)
)
