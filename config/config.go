// Package config loads the sessionauth service configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/jonwraymond/sessionauth/auth"
	"github.com/jonwraymond/sessionauth/observe"
	"github.com/jonwraymond/sessionauth/secret"
	"github.com/jonwraymond/sessionauth/session"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the service configuration file.
type Config struct {
	// Issuer is the iss claim. Empty uses the session default.
	Issuer string `yaml:"issuer"`

	// TTL is the token lifetime. Required.
	TTL time.Duration `yaml:"ttl"`

	Keys      KeysConfig        `yaml:"keys"`
	Roles     map[string]string `yaml:"roles"`
	Store     StoreConfig       `yaml:"store"`
	Directory DirectoryConfig   `yaml:"directory"`
	Login     LoginConfig       `yaml:"login"`
	Server    ServerConfig      `yaml:"server"`
	Observe   ObserveConfig     `yaml:"observe"`

	// Secrets holds per-provider settings, e.g. secrets.file.dir.
	Secrets map[string]map[string]any `yaml:"secrets"`
}

// KeysConfig locates the signing key pair.
type KeysConfig struct {
	Private string `yaml:"private"`
	Public  string `yaml:"public"`

	// Passphrase decrypts the private key. It may be a literal, contain
	// ${VAR} references, or be a secretref:<provider>:<ref>. A literal $
	// is written $$.
	Passphrase string `yaml:"passphrase"`
}

// StoreConfig selects the revocation store.
type StoreConfig struct {
	Backend string `yaml:"backend"`

	// PurgeInterval sweeps expired entries from the memory store. Zero
	// disables the sweep.
	PurgeInterval time.Duration `yaml:"purge_interval"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the shared store.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	Retention time.Duration `yaml:"retention"`
	Breaker   BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the circuit breaker around Redis calls.
type BreakerConfig struct {
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
}

// DirectoryConfig locates the user directory file.
type DirectoryConfig struct {
	Path string `yaml:"path"`
}

// LoginConfig throttles the authenticate endpoint.
type LoginConfig struct {
	// Rate is the per-user attempt refill rate in attempts per second.
	Rate float64 `yaml:"rate"`

	// Burst is the number of attempts a user may make back to back.
	Burst int `yaml:"burst"`

	// MaxConcurrent caps concurrent password verifications.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ObserveConfig configures telemetry.
type ObserveConfig struct {
	ServiceName string  `yaml:"service_name"`
	Tracing     string  `yaml:"tracing"`
	SamplePct   float64 `yaml:"sample_pct"`
	Metrics     string  `yaml:"metrics"`
	LogLevel    string  `yaml:"log_level"`
	LogFormat   string  `yaml:"log_format"`
}

// Default returns a configuration with every optional field set. TTL and
// key paths are left empty.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:       BackendMemory,
			PurgeInterval: time.Minute,
		},
		Login: LoginConfig{
			Rate:          0.2,
			Burst:         5,
			MaxConcurrent: 4,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Observe: ObserveConfig{
			ServiceName: "sessionauth",
			Tracing:     "none",
			SamplePct:   1,
			Metrics:     "prometheus",
			LogLevel:    "info",
			LogFormat:   "json",
		},
	}
}

// Load reads the file at path over Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.TTL < session.MinTTL {
		return fmt.Errorf("%w: ttl must be at least %s, got %s", ErrInvalid, session.MinTTL, c.TTL)
	}
	if c.Keys.Private == "" || c.Keys.Public == "" {
		return fmt.Errorf("%w: keys.private and keys.public are required", ErrInvalid)
	}
	if len(c.Roles) > 0 {
		if _, err := auth.ParseRoleNames(c.Roles); err != nil {
			return fmt.Errorf("%w: roles: %w", ErrInvalid, err)
		}
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("%w: store.redis.addr is required", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalid, c.Store.Backend)
	}
	if c.Store.PurgeInterval < 0 {
		return fmt.Errorf("%w: store.purge_interval must not be negative", ErrInvalid)
	}

	if c.Login.Rate <= 0 || c.Login.Burst <= 0 || c.Login.MaxConcurrent <= 0 {
		return fmt.Errorf("%w: login rate, burst and max_concurrent must be positive", ErrInvalid)
	}

	oc := c.ObserveConfig()
	if err := oc.Validate(); err != nil {
		return fmt.Errorf("%w: observe: %w", ErrInvalid, err)
	}
	return nil
}

// EffectiveIssuer returns the iss claim tokens are minted with and must
// carry to verify.
func (c *Config) EffectiveIssuer() string {
	if c.Issuer == "" {
		return session.DefaultIssuer
	}
	return c.Issuer
}

// RoleTable returns the configured role names, or the canonical names when
// none are configured.
func (c *Config) RoleTable() (*auth.RoleTable, error) {
	if len(c.Roles) == 0 {
		return auth.DefaultRoles(), nil
	}
	return auth.ParseRoleNames(c.Roles)
}

// ObserveConfig converts the telemetry section.
func (c *Config) ObserveConfig() observe.Config {
	o := c.Observe
	return observe.Config{
		ServiceName: o.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   o.Tracing != "" && o.Tracing != "none",
			Exporter:  o.Tracing,
			SamplePct: o.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.Metrics != "" && o.Metrics != "none",
			Exporter: o.Metrics,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   o.LogLevel,
			Format:  o.LogFormat,
		},
	}
}

// SecretResolver builds a strict resolver from the default providers and
// the secrets section.
func (c *Config) SecretResolver() (*secret.Resolver, error) {
	return secret.NewResolverFromRegistry(secret.DefaultRegistry, true, c.Secrets)
}

// Secrets are the resolved credentials referenced by the configuration.
type Secrets struct {
	Passphrase    string
	RedisPassword string
}

// ResolveSecrets resolves the key passphrase and, for the redis backend,
// the Redis password.
func (c *Config) ResolveSecrets(ctx context.Context, res *secret.Resolver) (*Secrets, error) {
	pass, err := res.ResolveValue(ctx, c.Keys.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("keys.passphrase: %w", err)
	}
	out := &Secrets{Passphrase: pass}

	if c.Store.Backend == BackendRedis && c.Store.Redis.Password != "" {
		pw, err := res.ResolveValue(ctx, c.Store.Redis.Password)
		if err != nil {
			return nil, fmt.Errorf("store.redis.password: %w", err)
		}
		out.RedisPassword = pw
	}
	return out, nil
}
