package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func fixed(name string, r Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return r })
}

func TestNewAggregator_Defaults(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	if agg.config.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", agg.config.Timeout)
	}
}

func TestAggregator_RegisterOrderAndReplace(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(fixed("keys", Healthy("ok")))
	agg.Register(fixed("revocation", Healthy("ok")))
	agg.Register(fixed("keys", Degraded("replaced")))

	names := agg.CheckerNames()
	if len(names) != 2 || names[0] != "keys" || names[1] != "revocation" {
		t.Fatalf("CheckerNames() = %v, want [keys revocation]", names)
	}

	r, err := agg.Check(context.Background(), "keys")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if r.Status != StatusDegraded {
		t.Errorf("Status = %v, want replaced checker's degraded", r.Status)
	}
}

func TestAggregator_CheckUnknown(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{MaxConcurrent: 1})
	agg.Register(fixed("a", Healthy("ok")))
	agg.Register(fixed("b", Degraded("slow")))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results["b"].Status != StatusDegraded {
		t.Errorf("b status = %v, want degraded", results["b"].Status)
	}
	for name, r := range results {
		if r.Duration <= 0 {
			t.Errorf("%s Duration = %v, want > 0", name, r.Duration)
		}
	}
}

func TestAggregator_CheckAllEmpty(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	results := agg.CheckAll(context.Background())
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
	if OverallStatus(results) != StatusHealthy {
		t.Error("empty results should be healthy")
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	release := make(chan struct{})
	defer close(release)
	agg.Register(NewCheckerFunc("stuck", func(ctx context.Context) Result {
		<-release
		return Healthy("late")
	}))

	r, err := agg.Check(context.Background(), "stuck")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if r.Status != StatusUnhealthy || !errors.Is(r.Error, ErrCheckTimeout) {
		t.Errorf("result = %v/%v, want unhealthy/ErrCheckTimeout", r.Status, r.Error)
	}
}

func TestAggregator_CheckAllRunsConcurrently(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: time.Second})
	var running, peak atomic.Int32
	barrier := make(chan struct{})
	for _, name := range []string{"a", "b", "c"} {
		agg.Register(NewCheckerFunc(name, func(ctx context.Context) Result {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			if n == 3 {
				close(barrier)
			}
			select {
			case <-barrier:
			case <-ctx.Done():
			}
			running.Add(-1)
			return Healthy("ok")
		}))
	}

	agg.CheckAll(context.Background())
	if peak.Load() != 3 {
		t.Errorf("peak concurrency = %d, want 3", peak.Load())
	}
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"all healthy", map[string]Result{"a": Healthy(""), "b": Healthy("")}, StatusHealthy},
		{"one degraded", map[string]Result{"a": Healthy(""), "b": Degraded("")}, StatusDegraded},
		{"unhealthy wins", map[string]Result{"a": Degraded(""), "b": Unhealthy("", nil)}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
