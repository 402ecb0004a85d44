package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/sessionauth/clock"
)

// RateLimiterConfig configures the rate limiters.
type RateLimiterConfig struct {
	// Rate is the number of operations allowed per second.
	// Default: 1
	Rate float64

	// Burst is the maximum burst size.
	// Default: 5
	Burst int

	// IdleTTL is how long a KeyedLimiter keeps a full bucket for an idle
	// key. Default: time to refill a full burst, at least one minute.
	IdleTTL time.Duration

	// Clock supplies the time for refills. Default: clock.Real().
	Clock clock.Clock
}

func (c *RateLimiterConfig) applyDefaults() {
	if c.Rate <= 0 {
		c.Rate = 1
	}
	if c.Burst <= 0 {
		c.Burst = 5
	}
	if c.IdleTTL <= 0 {
		refill := time.Duration(float64(c.Burst) / c.Rate * float64(time.Second))
		c.IdleTTL = max(refill, time.Minute)
	}
	if c.Clock == nil {
		c.Clock = clock.Real()
	}
}

// bucket is a token bucket. Callers hold the owning limiter's lock.
type bucket struct {
	tokens      float64
	lastRefresh time.Time
}

func (b *bucket) refill(now time.Time, cfg *RateLimiterConfig) {
	elapsed := now.Sub(b.lastRefresh)
	if elapsed > 0 {
		b.tokens += elapsed.Seconds() * cfg.Rate
		b.lastRefresh = now
	}
	if b.tokens > float64(cfg.Burst) {
		b.tokens = float64(cfg.Burst)
	}
}

func (b *bucket) take(n int) bool {
	if b.tokens >= float64(n) {
		b.tokens -= float64(n)
		return true
	}
	return false
}

// RateLimiter implements a single token bucket.
type RateLimiter struct {
	config RateLimiterConfig

	mu     sync.Mutex
	bucket bucket
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	config.applyDefaults()
	return &RateLimiter{
		config: config,
		bucket: bucket{tokens: float64(config.Burst), lastRefresh: config.Clock.Now()},
	}
}

// Allow checks if a request is allowed under the rate limit.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN checks if n requests are allowed.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.bucket.refill(rl.config.Clock.Now(), &rl.config)
	return rl.bucket.take(n)
}

// Execute runs the operation if allowed by rate limit.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if !rl.Allow() {
		return ErrRateLimitExceeded
	}
	return op(ctx)
}

// Tokens returns the current number of available tokens.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.bucket.refill(rl.config.Clock.Now(), &rl.config)
	return rl.bucket.tokens
}

// Reset resets the rate limiter to full capacity.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.bucket = bucket{tokens: float64(rl.config.Burst), lastRefresh: rl.config.Clock.Now()}
}

// KeyedLimiter keeps an independent token bucket per key.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - A key seen for the first time starts with a full bucket.
// - Buckets idle for longer than IdleTTL are dropped by Sweep.
type KeyedLimiter struct {
	config RateLimiterConfig

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewKeyedLimiter creates an empty keyed limiter.
func NewKeyedLimiter(config RateLimiterConfig) *KeyedLimiter {
	config.applyDefaults()
	return &KeyedLimiter{
		config:  config,
		buckets: make(map[string]*bucket),
	}
}

// Allow takes one token from key's bucket.
func (k *KeyedLimiter) Allow(key string) bool {
	now := k.config.Clock.Now()

	k.mu.Lock()
	defer k.mu.Unlock()

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(k.config.Burst), lastRefresh: now}
		k.buckets[key] = b
	}
	b.refill(now, &k.config)
	return b.take(1)
}

// Forget drops key's bucket, restoring a full burst.
func (k *KeyedLimiter) Forget(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.buckets, key)
}

// Sweep drops buckets idle for longer than IdleTTL and returns how many
// were dropped.
func (k *KeyedLimiter) Sweep() int {
	now := k.config.Clock.Now()

	k.mu.Lock()
	defer k.mu.Unlock()

	dropped := 0
	for key, b := range k.buckets {
		if now.Sub(b.lastRefresh) > k.config.IdleTTL {
			delete(k.buckets, key)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of tracked keys.
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}
