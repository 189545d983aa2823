package health

import "time"

// Check names used by the service.
const (
	CheckCPU      = "cpu"
	CheckDatabase = "database"
	CheckMemory   = "memory"
)

// StandardConfig configures the service's standard set of checks.
type StandardConfig struct {
	// CPUThreshold is passed to the CPU checker. Default: 95
	CPUThreshold float64

	// CPU overrides the CPU sampler. Optional.
	CPU Sampler

	// Memory overrides the memory sampler. Optional.
	Memory Sampler

	// Database is the dependency probe. Default: AlwaysUp
	Database Pinger

	// Timeout bounds one evaluation. Default: 5 seconds
	Timeout time.Duration
}

// NewStandard builds an aggregator with the cpu, database and memory checks.
//
// The resulting policy: a CPU reading above the threshold degrades the
// status, an unreachable database makes it unhealthy regardless of CPU, and
// memory is recorded without affecting the status. The memory checker's
// degraded and unhealthy levels are informational only. A CPU sample that
// outlives the timeout degrades rather than fails the status.
func NewStandard(config StandardConfig) *Aggregator {
	agg := NewAggregator(AggregatorConfig{
		Timeout:  config.Timeout,
		Parallel: true,
	})

	agg.Register(CheckCPU, NewCPUChecker(CPUCheckerConfig{
		DegradedThreshold: config.CPUThreshold,
		Sample:            config.CPU,
	}))
	agg.Register(CheckDatabase, NewDependencyChecker(CheckDatabase, config.Database))
	agg.RegisterAdvisory(CheckMemory, NewMemoryChecker(MemoryCheckerConfig{
		Sample: config.Memory,
	}))

	return agg
}
