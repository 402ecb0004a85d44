package secret

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ProviderFactory creates a Provider from configuration.
type ProviderFactory func(cfg map[string]any) (Provider, error)

// Registry manages provider factories.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ProviderFactory
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ProviderFactory)}
}

// Register adds a provider factory.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return ErrInvalidRegistration
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("secret provider %q already registered", name)
	}
	r.providers[name] = factory
	return nil
}

// Create instantiates a provider by name.
func (r *Registry) Create(name string, cfg map[string]any) (Provider, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("secret: provider name is required")
	}

	r.mu.RLock()
	factory, ok := r.providers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	return factory(cfg)
}

// List returns registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewResolverFromRegistry creates a resolver holding one provider per
// registered name. cfgs supplies per-provider configuration.
func NewResolverFromRegistry(reg *Registry, strict bool, cfgs map[string]map[string]any) (*Resolver, error) {
	res := NewResolver(strict)
	for _, name := range reg.List() {
		p, err := reg.Create(name, cfgs[name])
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("secret: create provider %q: %w", name, err)
		}
		res.Register(p)
	}
	return res, nil
}

// DefaultRegistry is the global registry for secret providers. It ships
// with env and file.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("env", func(map[string]any) (Provider, error) {
		return EnvProvider{}, nil
	})
	_ = r.Register("file", func(cfg map[string]any) (Provider, error) {
		p := &FileProvider{}
		if v, ok := cfg["dir"]; ok {
			dir, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("secret: file provider dir must be a string, got %T", v)
			}
			p.Dir = dir
		}
		return p, nil
	})
	return r
}
