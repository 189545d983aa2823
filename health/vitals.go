package health

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Unavailable is reported as a check value when a sampler fails.
const Unavailable = "unavailable"

// Sampler returns an instantaneous utilization percentage in [0, 100].
type Sampler func(ctx context.Context) (float64, error)

// SampleCPU returns system-wide CPU utilization since the previous call.
func SampleCPU(ctx context.Context) (float64, error) {
	pcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(pcts) == 0 {
		return 0, ErrNoSample
	}
	return pcts[0], nil
}

// SampleMemory returns the percentage of physical memory in use.
func SampleMemory(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

// CPUCheckerConfig configures the CPU health checker.
type CPUCheckerConfig struct {
	// DegradedThreshold is the utilization percentage above which the check
	// reports degraded. Readings equal to the threshold are healthy.
	// Default: 95
	DegradedThreshold float64

	// Sample reads CPU utilization.
	// Default: SampleCPU
	Sample Sampler
}

// CPUChecker reports degraded when CPU utilization exceeds a threshold.
// It never reports unhealthy: a failed or timed-out sample is degraded.
type CPUChecker struct {
	config CPUCheckerConfig
}

// NewCPUChecker creates a new CPU health checker.
func NewCPUChecker(config CPUCheckerConfig) *CPUChecker {
	if config.DegradedThreshold <= 0 || config.DegradedThreshold > 100 {
		config.DegradedThreshold = 95
	}
	if config.Sample == nil {
		config.Sample = SampleCPU
	}
	return &CPUChecker{config: config}
}

// Name returns the name of this checker.
func (c *CPUChecker) Name() string {
	return "cpu"
}

// TimeoutStatus reports a CPU sample cut off by the deadline as degraded.
func (c *CPUChecker) TimeoutStatus() Status {
	return StatusDegraded
}

// Check samples CPU utilization once.
func (c *CPUChecker) Check(ctx context.Context) Result {
	pct, err := c.config.Sample(ctx)
	if err != nil {
		return Degraded("cpu utilization unavailable").
			WithValue(Unavailable).
			WithError(err)
	}

	details := map[string]any{
		"usage_percent": pct,
		"threshold":     c.config.DegradedThreshold,
	}

	if pct > c.config.DegradedThreshold {
		return Degraded(fmt.Sprintf("cpu usage high: %.1f%%", pct)).
			WithValue(FormatPercent(pct)).
			WithDetails(details)
	}
	return Healthy(fmt.Sprintf("cpu usage normal: %.1f%%", pct)).
		WithValue(FormatPercent(pct)).
		WithDetails(details)
}

// MemoryCheckerConfig configures the memory health checker.
type MemoryCheckerConfig struct {
	// WarningThreshold is the utilization percentage reported as degraded.
	// Default: 80
	WarningThreshold float64

	// CriticalThreshold is the utilization percentage reported as unhealthy.
	// Default: 95
	CriticalThreshold float64

	// Sample reads memory utilization.
	// Default: SampleMemory
	Sample Sampler
}

var _ TimeoutStatuser = (*CPUChecker)(nil)

// MemoryChecker reports memory pressure. NewStandard registers it as
// advisory, so its warning and critical levels are informational: they show
// up in logs but never change the overall status.
type MemoryChecker struct {
	config MemoryCheckerConfig
}

// NewMemoryChecker creates a new memory health checker.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 100 {
		config.WarningThreshold = 80
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold > 100 {
		config.CriticalThreshold = 95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = config.WarningThreshold + 10
		if config.CriticalThreshold > 100 {
			config.CriticalThreshold = 99
		}
	}
	if config.Sample == nil {
		config.Sample = SampleMemory
	}
	return &MemoryChecker{config: config}
}

// Name returns the name of this checker.
func (m *MemoryChecker) Name() string {
	return "memory"
}

// Check samples memory utilization once.
func (m *MemoryChecker) Check(ctx context.Context) Result {
	pct, err := m.config.Sample(ctx)
	if err != nil {
		return Degraded("memory utilization unavailable").
			WithValue(Unavailable).
			WithError(err)
	}

	details := map[string]any{"usage_percent": pct}
	value := FormatPercent(pct)

	switch {
	case pct >= m.config.CriticalThreshold:
		return Unhealthy(fmt.Sprintf("memory usage critical: %.1f%%", pct), ErrCheckFailed).
			WithValue(value).
			WithDetails(details)
	case pct >= m.config.WarningThreshold:
		return Degraded(fmt.Sprintf("memory usage high: %.1f%%", pct)).
			WithValue(value).
			WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("memory usage normal: %.1f%%", pct)).
			WithValue(value).
			WithDetails(details)
	}
}
