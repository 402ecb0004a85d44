package resilience

import (
	"context"
	"sync/atomic"
	"time"
)

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the number of slots. Default: 4.
	MaxConcurrent int

	// MaxWait is how long Acquire waits for a slot. Zero rejects at once
	// when every slot is taken.
	MaxWait time.Duration
}

// Bulkhead caps how many operations run at the same time. The login path
// uses one so that a burst of password checks, each a CPU bound key
// derivation, cannot starve token validation.
//
// A Bulkhead is safe for concurrent use. Every successful Acquire must be
// paired with exactly one Release.
type Bulkhead struct {
	slots   chan struct{}
	maxWait time.Duration

	rejected atomic.Int64
}

// NewBulkhead returns a Bulkhead with every slot free.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	n := config.MaxConcurrent
	if n <= 0 {
		n = 4
	}
	return &Bulkhead{
		slots:   make(chan struct{}, n),
		maxWait: config.MaxWait,
	}
}

// Acquire takes a slot. It returns ErrBulkheadFull when none frees up within
// MaxWait, or ctx.Err() if ctx ends first.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	default:
	}
	if b.maxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}

	timer := time.NewTimer(b.maxWait)
	defer timer.Stop()
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		b.rejected.Add(1)
		return ErrBulkheadFull
	}
}

// Release frees a slot taken by Acquire.
func (b *Bulkhead) Release() {
	select {
	case <-b.slots:
	default:
	}
}

// Execute runs op in a slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()
	return op(ctx)
}

// BulkheadMetrics is a snapshot of a Bulkhead.
type BulkheadMetrics struct {
	Active        int
	Available     int
	MaxConcurrent int
	Rejected      int64
}

// Metrics returns a snapshot. Active and Available may be stale by the time
// the caller reads them.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	active := len(b.slots)
	return BulkheadMetrics{
		Active:        active,
		Available:     cap(b.slots) - active,
		MaxConcurrent: cap(b.slots),
		Rejected:      b.rejected.Load(),
	}
}
