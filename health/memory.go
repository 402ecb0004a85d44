package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryCheckerConfig configures the memory health checker.
type MemoryCheckerConfig struct {
	// MaxHeap is the heap size considered full. Zero uses the heap reserved
	// from the OS.
	MaxHeap uint64

	// WarningThreshold is the fraction of MaxHeap that degrades. Default: 0.8.
	WarningThreshold float64

	// CriticalThreshold is the fraction of MaxHeap that fails. Default: 0.95.
	CriticalThreshold float64
}

// MemoryChecker checks heap usage.
type MemoryChecker struct {
	config  MemoryCheckerConfig
	readMem func(*runtime.MemStats)
}

// NewMemoryChecker creates a new memory health checker.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= config.WarningThreshold || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = max(0.95, config.WarningThreshold)
	}
	return &MemoryChecker{config: config, readMem: runtime.ReadMemStats}
}

// Name returns "memory".
func (m *MemoryChecker) Name() string {
	return "memory"
}

// Check compares the live heap against the configured maximum.
func (m *MemoryChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	var stats runtime.MemStats
	m.readMem(&stats)

	limit := m.config.MaxHeap
	if limit == 0 {
		limit = stats.HeapSys
	}
	details := map[string]any{
		"heap_alloc": stats.HeapAlloc,
		"heap_limit": limit,
		"num_gc":     stats.NumGC,
		"goroutines": runtime.NumGoroutine(),
	}
	if limit == 0 {
		return Healthy("memory stats unavailable").WithDetails(details)
	}

	ratio := float64(stats.HeapAlloc) / float64(limit)
	details["usage_percent"] = ratio * 100

	switch {
	case ratio >= m.config.CriticalThreshold:
		return Unhealthy(fmt.Sprintf("heap usage critical: %.1f%%", ratio*100), ErrCheckFailed).WithDetails(details)
	case ratio >= m.config.WarningThreshold:
		return Degraded(fmt.Sprintf("heap usage high: %.1f%%", ratio*100)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("heap usage normal: %.1f%%", ratio*100)).WithDetails(details)
	}
}
