// Package resilience guards the session service against overload and
// dependency outages.
//
// Three patterns are provided:
//
//   - CircuitBreaker fails revocation store calls fast while the backing
//     server is down, so validation rejects promptly instead of queueing
//     on dead connections.
//
//   - KeyedLimiter keeps one token bucket per key and throttles repeated
//     login attempts against the same account.
//
//   - Bulkhead caps concurrent password verifications, which are CPU bound.
//
// None of the patterns retry. A failed store call surfaces to the caller,
// which rejects the request.
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    MaxFailures:  5,
//	    ResetTimeout: 10 * time.Second,
//	})
//	store := revocation.NewRedisStoreWithClient(client, revocation.RedisConfig{Breaker: cb})
//
//	limiter := resilience.NewKeyedLimiter(resilience.RateLimiterConfig{Rate: 0.2, Burst: 5})
//	if !limiter.Allow(userName) {
//	    return resilience.ErrRateLimitExceeded
//	}
package resilience
