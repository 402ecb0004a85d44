package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/sessionauth/auth"
	"github.com/jonwraymond/sessionauth/clock"
	"github.com/jonwraymond/sessionauth/observe"
	"github.com/jonwraymond/sessionauth/revocation"
	"github.com/jonwraymond/sessionauth/token"
)

// DefaultIssuer is the iss claim when Config.Issuer is empty.
const DefaultIssuer = "Agora VR"

// MinTTL is the shortest token lifetime a Service accepts.
const MinTTL = time.Second

// Config configures a Service.
type Config struct {
	// Issuer is the iss claim. Default: DefaultIssuer.
	Issuer string

	// TTL is the token lifetime. Required, at least MinTTL. Token
	// timestamps have one-second precision, so a sub-second remainder is
	// dropped.
	TTL time.Duration

	// Roles maps roles to the names carried in tokens. Default: auth.DefaultRoles().
	Roles *auth.RoleTable

	// Clock supplies the current time. Default: clock.Real().
	Clock clock.Clock

	// Middleware instruments every operation. Default: logging and
	// telemetry disabled.
	Middleware *observe.Middleware
}

func (c *Config) applyDefaults() {
	if c.Issuer == "" {
		c.Issuer = DefaultIssuer
	}
	if c.Roles == nil {
		c.Roles = auth.DefaultRoles()
	}
	if c.Clock == nil {
		c.Clock = clock.Real()
	}
	if c.Middleware == nil {
		c.Middleware = observe.NewMiddleware(nil, nil, nil)
	}
}

// Service issues and validates tokens.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: rejections are *AuthError matching ErrUnauthenticated; store
//   failures are returned wrapped and are never reported as success.
type Service struct {
	codec *token.Codec
	store revocation.Store
	cfg   Config
}

// NewService creates a Service.
func NewService(codec *token.Codec, store revocation.Store, cfg Config) (*Service, error) {
	if codec == nil {
		return nil, fmt.Errorf("%w: codec is required", ErrInvalidConfig)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if cfg.TTL < MinTTL {
		return nil, fmt.Errorf("%w: ttl must be at least %s, got %s", ErrInvalidConfig, MinTTL, cfg.TTL)
	}
	cfg.applyDefaults()
	return &Service{codec: codec, store: store, cfg: cfg}, nil
}

// Roles returns the service's role table.
func (s *Service) Roles() *auth.RoleTable {
	return s.cfg.Roles
}

// Issue mints a token for the subject and registers it as the subject's
// only active token.
func (s *Service) Issue(ctx context.Context, subjectID int64, name string, role auth.Role) (string, error) {
	var raw string
	err := s.cfg.Middleware.Run(ctx, observe.OpMeta{Component: "session", Name: "issue"}, func(ctx context.Context) error {
		roleName, ok := s.cfg.Roles.Name(role)
		if !ok {
			return fmt.Errorf("%w: %s has no configured name", auth.ErrUnknownRole, role)
		}

		// Token timestamps have one-second precision; the store records the
		// same expiry the token carries, at least MinTTL past now.
		now := s.cfg.Clock.Now().Truncate(time.Second)
		claims := token.Claims{
			Issuer:    s.cfg.Issuer,
			IssuedAt:  now,
			ExpiresAt: now.Add(s.cfg.TTL).Truncate(time.Second),
			ID:        uuid.NewString(),
			App: token.App{
				SubjectID:   subjectID,
				SubjectName: name,
				Role:        roleName,
			},
		}

		signed, err := s.codec.Encode(claims)
		if err != nil {
			return fmt.Errorf("session: encode: %w", err)
		}
		if err := s.store.Register(ctx, subjectID, signed, claims.ExpiresAt); err != nil {
			return fmt.Errorf("session: register: %w", err)
		}
		raw = signed
		return nil
	}, observe.Field{Key: "subject_id", Value: subjectID}, observe.Field{Key: "role", Value: role.String()})
	if err != nil {
		return "", err
	}
	return raw, nil
}

// Validate returns the claims of raw if it verifies, is its subject's active
// token, and has not expired. Checks run in that order and stop at the
// first failure; an expired token is evicted.
func (s *Service) Validate(ctx context.Context, raw string) (*token.Claims, error) {
	var claims *token.Claims
	err := s.cfg.Middleware.Run(ctx, observe.OpMeta{Component: "session", Name: "validate"}, func(ctx context.Context) error {
		decoded, err := s.codec.Decode(ctx, raw)
		if err != nil {
			return reject(ReasonInvalid, err)
		}

		active, err := s.store.IsActive(ctx, raw)
		if err != nil {
			return fmt.Errorf("session: lookup: %w", err)
		}
		if !active {
			return reject(ReasonSuperseded, nil)
		}

		if decoded.Expired(s.cfg.Clock.Now()) {
			if _, err := s.store.EvictToken(ctx, raw); err != nil {
				return reject(ReasonExpired, fmt.Errorf("evict: %w", err))
			}
			return reject(ReasonExpired, nil)
		}

		claims = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Revoke ends the subject's session. It is a no-op when none is active.
func (s *Service) Revoke(ctx context.Context, subjectID int64) error {
	return s.cfg.Middleware.Run(ctx, observe.OpMeta{Component: "session", Name: "revoke"}, func(ctx context.Context) error {
		if err := s.store.Evict(ctx, subjectID); err != nil {
			return fmt.Errorf("session: evict: %w", err)
		}
		return nil
	}, observe.Field{Key: "subject_id", Value: subjectID})
}

// Login verifies credentials against dir and issues a token for the
// matching user.
func (s *Service) Login(ctx context.Context, dir Directory, name, secret string) (string, error) {
	var raw string
	err := s.cfg.Middleware.Run(ctx, observe.OpMeta{Component: "session", Name: "login"}, func(ctx context.Context) error {
		rec, err := dir.VerifyCredentials(ctx, name, secret)
		if err != nil {
			return fmt.Errorf("session: verify credentials: %w", err)
		}
		if rec == nil {
			return reject(ReasonCredentials, nil)
		}

		role, err := dir.LookupRole(ctx, rec.ID)
		if err != nil {
			return fmt.Errorf("session: lookup role: %w", err)
		}

		raw, err = s.Issue(ctx, rec.ID, rec.Name, role)
		return err
	}, observe.Field{Key: "user_name", Value: name})
	if err != nil {
		return "", err
	}
	return raw, nil
}

// IsRejection reports whether err is an authentication rejection rather
// than an internal failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
