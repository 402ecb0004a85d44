package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonwraymond/sessionauth/clock"
)

// State is the position of a CircuitBreaker.
type State int

const (
	// StateClosed lets every call through and counts failures.
	StateClosed State = iota
	// StateOpen rejects every call with ErrCircuitOpen.
	StateOpen
	// StateHalfOpen lets a bounded number of probes through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the
	// circuit. Default: 5.
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before a probe is
	// allowed. Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMaxRequests bounds concurrent probes. Default: 1.
	HalfOpenMaxRequests int

	// OnStateChange, if set, is called after every transition, outside the
	// breaker's lock.
	OnStateChange func(from, to State)

	// IsFailure classifies an error. Default: any non-nil error except
	// context.Canceled, so a client hanging up never trips the circuit.
	IsFailure func(err error) bool

	// Clock supplies the time. Default: clock.Real().
	Clock clock.Clock
}

// CircuitBreaker stops calling a failing dependency. The revocation Redis
// store runs every command through one, so an outage answers with
// ErrCircuitOpen at once instead of waiting out a dial timeout per request.
//
// A CircuitBreaker is safe for concurrent use. Execute never calls op while
// the circuit is open.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	rejected    int64
	probes      int
	lastFailure time.Time
}

// NewCircuitBreaker returns a closed breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		}
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	return &CircuitBreaker{cfg: config, now: config.Clock.Now}
}

// Execute calls op unless the circuit is open, and records the outcome.
// The error from op is returned unchanged.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := op(ctx)
	cb.record(err)
	return err
}

// State reports the current state, moving an expired open circuit to
// half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	var moves []transition
	s := cb.refreshLocked(&moves)
	cb.mu.Unlock()
	cb.notify(moves)
	return s
}

// Reset closes the circuit and clears the failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	var moves []transition
	cb.failures = 0
	cb.probes = 0
	cb.moveLocked(StateClosed, &moves)
	cb.mu.Unlock()
	cb.notify(moves)
}

// CircuitBreakerMetrics is a snapshot of a CircuitBreaker.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	Rejected    int64
	LastFailure time.Time
}

// Metrics returns a snapshot for health details and logs.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	var moves []transition
	m := CircuitBreakerMetrics{
		State:       cb.refreshLocked(&moves),
		Failures:    cb.failures,
		Rejected:    cb.rejected,
		LastFailure: cb.lastFailure,
	}
	cb.mu.Unlock()
	cb.notify(moves)
	return m
}

type transition struct{ from, to State }

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	var moves []transition
	err := func() error {
		switch cb.refreshLocked(&moves) {
		case StateOpen:
			cb.rejected++
			return ErrCircuitOpen
		case StateHalfOpen:
			if cb.probes >= cb.cfg.HalfOpenMaxRequests {
				cb.rejected++
				return ErrCircuitOpen
			}
			cb.probes++
		}
		return nil
	}()
	cb.mu.Unlock()
	cb.notify(moves)
	return err
}

func (cb *CircuitBreaker) record(err error) {
	failed := cb.cfg.IsFailure(err)

	cb.mu.Lock()
	var moves []transition
	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			break
		}
		cb.failures++
		cb.lastFailure = cb.now()
		if cb.failures >= cb.cfg.MaxFailures {
			cb.moveLocked(StateOpen, &moves)
		}
	case StateHalfOpen:
		if failed {
			cb.lastFailure = cb.now()
			cb.moveLocked(StateOpen, &moves)
		} else {
			cb.failures = 0
			cb.moveLocked(StateClosed, &moves)
		}
	}
	cb.mu.Unlock()
	cb.notify(moves)
}

func (cb *CircuitBreaker) refreshLocked(moves *[]transition) State {
	if cb.state == StateOpen && cb.now().Sub(cb.lastFailure) >= cb.cfg.ResetTimeout {
		cb.moveLocked(StateHalfOpen, moves)
	}
	return cb.state
}

func (cb *CircuitBreaker) moveLocked(to State, moves *[]transition) {
	if cb.state == to {
		return
	}
	*moves = append(*moves, transition{cb.state, to})
	cb.state = to
	cb.probes = 0
}

func (cb *CircuitBreaker) notify(moves []transition) {
	if cb.cfg.OnStateChange == nil {
		return
	}
	for _, m := range moves {
		cb.cfg.OnStateChange(m.from, m.to)
	}
}
