package health

import (
	"context"
	"slices"
	"sync"
	"time"
)

// DefaultTimeout bounds one evaluation when none is configured.
const DefaultTimeout = 5 * time.Second

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// Timeout bounds every check of one evaluation.
	// Default: 5 seconds
	Timeout time.Duration

	// Parallel runs checks concurrently; otherwise they run in
	// registration order. Default: true
	Parallel bool
}

type registration struct {
	name     string
	checker  Checker
	advisory bool
}

// Aggregator combines checkers into a single status.
//
// The overall status is the worst status among status-affecting checkers.
// Advisory checkers are run and reported but never change the status.
type Aggregator struct {
	config AggregatorConfig

	mu   sync.RWMutex
	regs []registration
}

// NewAggregator creates a new health aggregator.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{Timeout: DefaultTimeout, Parallel: true}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Aggregator{config: cfg}
}

// Register adds a status-affecting checker. Registering an existing name
// replaces it in place.
func (a *Aggregator) Register(name string, checker Checker) {
	a.register(registration{name: name, checker: checker})
}

// RegisterAdvisory adds a checker whose result is reported but never
// changes the overall status.
func (a *Aggregator) RegisterAdvisory(name string, checker Checker) {
	a.register(registration{name: name, checker: checker, advisory: true})
}

func (a *Aggregator) register(reg registration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i := a.indexLocked(reg.name); i >= 0 {
		a.regs[i] = reg
		return
	}
	a.regs = append(a.regs, reg)
}

func (a *Aggregator) indexLocked(name string) int {
	return slices.IndexFunc(a.regs, func(r registration) bool { return r.name == name })
}

// CheckerNames returns the registered names in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.regs))
	for i, r := range a.regs {
		names[i] = r.name
	}
	return names
}

// IsAdvisory reports whether name was registered with RegisterAdvisory.
func (a *Aggregator) IsAdvisory(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	i := a.indexLocked(name)
	return i >= 0 && a.regs[i].advisory
}

func (a *Aggregator) snapshot() []registration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.regs)
}

// Check runs a single named check.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	i := a.indexLocked(name)
	var checker Checker
	if i >= 0 {
		checker = a.regs[i].checker
	}
	a.mu.RUnlock()

	if checker == nil {
		return Result{}, ErrCheckerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()
	return runCheck(ctx, checker), nil
}

// CheckAll runs every registered check and returns the results by name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	regs := a.snapshot()
	results := make(map[string]Result, len(regs))
	if len(regs) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	out := make([]Result, len(regs))
	if a.config.Parallel {
		var wg sync.WaitGroup
		for i, r := range regs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out[i] = runCheck(ctx, r.checker)
			}()
		}
		wg.Wait()
	} else {
		for i, r := range regs {
			out[i] = runCheck(ctx, r.checker)
		}
	}

	for i, r := range regs {
		results[r.name] = out[i]
	}
	return results
}

// OverallStatus reduces results to a single status.
//
// Precedence: Unhealthy if any status-affecting check is unhealthy, else
// Degraded if any is degraded, else Healthy. Advisory results are ignored.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	status := StatusHealthy
	for name, result := range results {
		if a.IsAdvisory(name) {
			continue
		}
		status = max(status, result.Status)
	}
	return status
}

// Report is the aggregate outcome of one evaluation.
type Report struct {
	Status  Status
	Checks  map[string]string
	Results map[string]Result
}

// Code returns the HTTP status code for the report.
func (r Report) Code() int {
	return r.Status.Code()
}

// Evaluate runs every check and builds a Report.
func (a *Aggregator) Evaluate(ctx context.Context) Report {
	return a.NewReport(a.CheckAll(ctx))
}

// NewReport reduces results to a Report. Checks with an empty Value are left
// out of Report.Checks.
func (a *Aggregator) NewReport(results map[string]Result) Report {
	checks := make(map[string]string, len(results))
	for name, result := range results {
		if result.Value != "" {
			checks[name] = result.Value
		}
	}

	return Report{
		Status:  a.OverallStatus(results),
		Checks:  checks,
		Results: results,
	}
}

// TimeoutStatuser is implemented by checkers that report something other
// than StatusUnhealthy when cut off by the evaluation deadline.
type TimeoutStatuser interface {
	TimeoutStatus() Status
}

func timeoutStatus(checker Checker) Status {
	if ts, ok := checker.(TimeoutStatuser); ok {
		return ts.TimeoutStatus()
	}
	return StatusUnhealthy
}

// runCheck runs checker in its own goroutine so a checker that ignores ctx
// is still cut off at the deadline.
func runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)

	go func() {
		result := checker.Check(ctx)
		result.Duration = time.Since(start)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		done <- result
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		return Result{
			Status:    timeoutStatus(checker),
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}
