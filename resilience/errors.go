package resilience

import "errors"

var (
	// ErrCircuitOpen rejects a call without running it while the breaker
	// is open or its half-open probe budget is spent.
	ErrCircuitOpen = errors.New("resilience: circuit open")

	// ErrRateLimitExceeded means the caller's bucket is empty. The HTTP
	// layer answers it with 429.
	ErrRateLimitExceeded = errors.New("resilience: rate limited")

	// ErrBulkheadFull means every slot stayed busy for MaxWait.
	ErrBulkheadFull = errors.New("resilience: no free slot")
)
