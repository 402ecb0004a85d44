package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/jonwraymond/sessionauth/clock"
	"github.com/jonwraymond/sessionauth/config"
	"github.com/jonwraymond/sessionauth/keys"
	"github.com/jonwraymond/sessionauth/observe"
	"github.com/jonwraymond/sessionauth/resilience"
	"github.com/jonwraymond/sessionauth/revocation"
	"github.com/jonwraymond/sessionauth/session"
	"github.com/jonwraymond/sessionauth/token"
)

// app holds the components built from the configuration file.
type app struct {
	cfg     *config.Config
	secrets *config.Secrets
	pair    *keys.KeyPair
	codec   *token.Codec
	store   revocation.Store
	closers []io.Closer
}

// loadApp reads the configuration, resolves secrets and loads the key pair.
// The store is left nil; see openStore.
func loadApp(ctx context.Context) (*app, error) {
	path := viper.GetString(ConfigKey)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log.Debug().Str("path", path).Msg("config loaded")

	res, err := cfg.SecretResolver()
	if err != nil {
		return nil, err
	}
	defer res.Close()

	secrets, err := cfg.ResolveSecrets(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("resolving secrets: %w", err)
	}

	pair, err := keys.Load(cfg.Keys.Private, cfg.Keys.Public, secrets.Passphrase)
	if err != nil {
		return nil, err
	}
	log.Info().Str("kid", pair.KeyID()).Int("bits", pair.Bits()).Msg("key pair loaded")

	return &app{
		cfg:     cfg,
		secrets: secrets,
		pair:    pair,
		codec:   token.NewCodec(pair, token.WithExpectedIssuer(cfg.EffectiveIssuer())),
	}, nil
}

// openStore connects the configured revocation store.
func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Store.Backend {
	case config.BackendRedis:
		rc := a.cfg.Store.Redis
		breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			MaxFailures:  rc.Breaker.MaxFailures,
			ResetTimeout: rc.Breaker.ResetTimeout,
			OnStateChange: func(from, to resilience.State) {
				log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("redis circuit breaker")
			},
		})
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: a.secrets.RedisPassword,
			DB:       rc.DB,
		})
		store := revocation.NewRedisStoreWithClient(client, revocation.RedisConfig{
			KeyPrefix: rc.KeyPrefix,
			Retention: rc.Retention,
			Breaker:   breaker,
		})
		a.closers = append(a.closers, store)
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		a.store = store
		log.Info().Str("addr", rc.Addr).Msg("using redis revocation store")
	default:
		a.store = revocation.NewMemoryStore()
		log.Info().Msg("using in-memory revocation store")
	}
	return nil
}

// newService builds the token service over the opened store.
func (a *app) newService(mw *observe.Middleware) (*session.Service, error) {
	roles, err := a.cfg.RoleTable()
	if err != nil {
		return nil, err
	}
	return session.NewService(a.codec, a.store, session.Config{
		Issuer:     a.cfg.EffectiveIssuer(),
		TTL:        a.cfg.TTL,
		Roles:      roles,
		Clock:      clock.Real(),
		Middleware: mw,
	})
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
