package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/sessionauth/revocation"
)

// Pinger is implemented by stores backed by a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sizer is implemented by stores that can count their entries.
type Sizer interface {
	Len() int
}

// StoreChecker reports on the revocation store. Remote stores are pinged;
// in-process stores report their entry count.
type StoreChecker struct {
	store revocation.Store
}

// NewStoreChecker creates a checker for store.
func NewStoreChecker(store revocation.Store) *StoreChecker {
	return &StoreChecker{store: store}
}

// Name returns "revocation".
func (c *StoreChecker) Name() string {
	return "revocation"
}

// Check pings or sizes the store.
func (c *StoreChecker) Check(ctx context.Context) Result {
	details := map[string]any{"backend": fmt.Sprintf("%T", c.store)}

	if p, ok := c.store.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return Unhealthy("revocation store unreachable", fmt.Errorf("%w: %w", ErrCheckFailed, err)).WithDetails(details)
		}
	}
	if s, ok := c.store.(Sizer); ok {
		details["entries"] = s.Len()
	}
	return Healthy("revocation store reachable").WithDetails(details)
}
