package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/sessionauth/clock"
	"github.com/jonwraymond/sessionauth/resilience"
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	// Addr is the Redis address (host:port).
	Addr string

	// Password authenticates to Redis.
	Password string

	// DB selects the Redis database.
	DB int

	// KeyPrefix namespaces every key.
	// Default: "sessionauth:"
	KeyPrefix string

	// Retention is how long an entry outlives its token's expiry, so that
	// validation still reports the expiry instead of an unknown token.
	// Default: 1 hour
	Retention time.Duration

	// Clock computes key lifetimes.
	// Default: clock.Real()
	Clock clock.Clock

	// Breaker, when set, fails calls fast while Redis is down.
	Breaker *resilience.CircuitBreaker
}

// RedisStore is a Store shared across processes. Tokens are stored as
// SHA-256 digests; raw bearer tokens never leave the process.
//
// Layout:
//
//	<prefix>subject:<id>    -> token digest
//	<prefix>token:<digest>  -> subject id
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
	clock     clock.Clock
	breaker   *resilience.CircuitBreaker
}

// registerScript swaps the subject's token and its index entry atomically.
//
//	KEYS[1] subject key   KEYS[2] new token key
//	ARGV[1] new digest    ARGV[2] subject id
//	ARGV[3] ttl millis    ARGV[4] token key prefix
var registerScript = redis.NewScript(`
local prev = redis.call("GET", KEYS[1])
if prev and prev ~= ARGV[1] then
  redis.call("DEL", ARGV[4] .. prev)
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// evictScript removes a subject entry and its index entry.
//
//	KEYS[1] subject key   ARGV[1] token key prefix
var evictScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if cur then
  redis.call("DEL", ARGV[1] .. cur)
end
return redis.call("DEL", KEYS[1])
`)

// evictTokenScript removes the entry owning a digest only while that digest
// is still the subject's current one.
//
//	KEYS[1] token key   ARGV[1] subject key prefix   ARGV[2] digest
var evictTokenScript = redis.NewScript(`
local subject = redis.call("GET", KEYS[1])
if not subject then
  return 0
end
local skey = ARGV[1] .. subject
if redis.call("GET", skey) == ARGV[2] then
  redis.call("DEL", skey)
end
redis.call("DEL", KEYS[1])
return 1
`)

// NewRedisStore connects a RedisStore to cfg.Addr.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("revocation: redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(client, cfg), nil
}

// NewRedisStoreWithClient builds a RedisStore on an existing client.
// Connection fields of cfg are ignored.
func NewRedisStoreWithClient(client redis.UniversalClient, cfg RedisConfig) *RedisStore {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "sessionauth:"
	}
	if cfg.Retention <= 0 {
		cfg.Retention = time.Hour
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	return &RedisStore{
		client:    client,
		prefix:    cfg.KeyPrefix,
		retention: cfg.Retention,
		clock:     cfg.Clock,
		breaker:   cfg.Breaker,
	}
}

// Register records token for subjectID.
func (s *RedisStore) Register(ctx context.Context, subjectID int64, token string, expiresAt time.Time) error {
	digest := digestOf(token)
	ttl := expiresAt.Sub(s.clock.Now()) + s.retention
	if ttl <= 0 {
		ttl = s.retention
	}

	return s.do(ctx, func(ctx context.Context) error {
		return registerScript.Run(ctx, s.client,
			[]string{s.subjectKey(subjectID), s.tokenKey(digest)},
			digest, strconv.FormatInt(subjectID, 10), ttl.Milliseconds(), s.prefix+"token:",
		).Err()
	})
}

// IsActive reports whether token is some subject's active token.
func (s *RedisStore) IsActive(ctx context.Context, token string) (bool, error) {
	var n int64
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.client.Exists(ctx, s.tokenKey(digestOf(token))).Result()
		return err
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Evict removes subjectID's entry.
func (s *RedisStore) Evict(ctx context.Context, subjectID int64) error {
	return s.do(ctx, func(ctx context.Context) error {
		return evictScript.Run(ctx, s.client,
			[]string{s.subjectKey(subjectID)},
			s.prefix+"token:",
		).Err()
	})
}

// EvictToken removes the entry owning token.
func (s *RedisStore) EvictToken(ctx context.Context, token string) (bool, error) {
	digest := digestOf(token)
	var removed int64
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		removed, err = evictTokenScript.Run(ctx, s.client,
			[]string{s.tokenKey(digest)},
			s.prefix+"subject:", digest,
		).Int64()
		return err
	})
	if err != nil {
		return false, err
	}
	return removed == 1, nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) do(ctx context.Context, op func(context.Context) error) error {
	run := op
	if s.breaker != nil {
		run = func(ctx context.Context) error {
			return s.breaker.Execute(ctx, op)
		}
	}
	if err := run(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) subjectKey(subjectID int64) string {
	return s.prefix + "subject:" + strconv.FormatInt(subjectID, 10)
}

func (s *RedisStore) tokenKey(digest string) string {
	return s.prefix + "token:" + digest
}

func digestOf(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

var _ Store = (*RedisStore)(nil)
