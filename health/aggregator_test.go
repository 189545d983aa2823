package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixed(name string, result Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return result })
}

func TestNewAggregator_Defaults(t *testing.T) {
	agg := NewAggregator()

	if agg.config.Timeout != 5*time.Second {
		t.Errorf("Default timeout = %v, want 5s", agg.config.Timeout)
	}
	if !agg.config.Parallel {
		t.Error("Default Parallel should be true")
	}
}

func TestNewAggregator_WithConfig(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: time.Second, Parallel: false})

	if agg.config.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", agg.config.Timeout)
	}
	if agg.config.Parallel {
		t.Error("Parallel should be false")
	}
}

func TestAggregator_RegisterOrder(t *testing.T) {
	agg := NewAggregator()
	agg.Register("cpu", fixed("cpu", Healthy("ok")))
	agg.Register("database", fixed("database", Healthy("ok")))
	agg.RegisterAdvisory("memory", fixed("memory", Healthy("ok")))

	names := agg.CheckerNames()
	want := []string{"cpu", "database", "memory"}
	if len(names) != len(want) {
		t.Fatalf("CheckerNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("CheckerNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	if !agg.IsAdvisory("memory") || agg.IsAdvisory("cpu") {
		t.Error("advisory flags not tracked")
	}
}

func TestAggregator_ReRegisterKeepsOrder(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a", fixed("a", Healthy("ok")))
	agg.Register("b", fixed("b", Healthy("ok")))
	agg.Register("a", fixed("a", Degraded("replaced")))

	if got := agg.CheckerNames(); len(got) != 2 || got[0] != "a" {
		t.Errorf("CheckerNames() = %v, want [a b]", got)
	}
	result, err := agg.Check(context.Background(), "a")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Status != StatusDegraded {
		t.Error("re-registering should replace the checker")
	}
}

func TestAggregator_NewReportFromSubset(t *testing.T) {
	agg := NewAggregator()
	agg.Register("cpu", fixed("cpu", Degraded("hot").WithValue("97.0%")))
	agg.Register("database", fixed("database", Healthy("ok").WithValue("up")))

	result, err := agg.Check(context.Background(), "database")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	report := agg.NewReport(map[string]Result{"database": result})
	if report.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy: cpu was not run", report.Status)
	}
	if len(report.Checks) != 1 || report.Checks["database"] != "up" {
		t.Errorf("Checks = %v, want only database", report.Checks)
	}
}

func TestAggregator_CheckNotFound(t *testing.T) {
	agg := NewAggregator()

	_, err := agg.Check(context.Background(), "missing")
	if !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_OverallStatus(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"empty", map[string]Result{}, StatusHealthy},
		{"all healthy", map[string]Result{
			"cpu": Healthy(""), "database": Healthy(""),
		}, StatusHealthy},
		{"degraded wins over healthy", map[string]Result{
			"cpu": Degraded(""), "database": Healthy(""),
		}, StatusDegraded},
		{"unhealthy overrides degraded", map[string]Result{
			"cpu": Degraded(""), "database": Unhealthy("", nil),
		}, StatusUnhealthy},
		{"advisory ignored", map[string]Result{
			"cpu": Healthy(""), "database": Healthy(""), "memory": Unhealthy("", nil),
		}, StatusHealthy},
	}

	agg := NewAggregator()
	agg.Register("cpu", fixed("cpu", Healthy("")))
	agg.Register("database", fixed("database", Healthy("")))
	agg.RegisterAdvisory("memory", fixed("memory", Healthy("")))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_CheckAllParallelAndSequential(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		agg := NewAggregator(AggregatorConfig{Parallel: parallel})
		agg.Register("a", fixed("a", Healthy("ok").WithValue("1")))
		agg.Register("b", fixed("b", Degraded("slow").WithValue("2")))

		results := agg.CheckAll(context.Background())
		if len(results) != 2 {
			t.Fatalf("parallel=%v: len(results) = %d, want 2", parallel, len(results))
		}
		if results["b"].Status != StatusDegraded {
			t.Errorf("parallel=%v: b status = %v", parallel, results["b"].Status)
		}
		if results["a"].Timestamp.IsZero() {
			t.Errorf("parallel=%v: timestamp not set", parallel)
		}
	}
}

func TestAggregator_CheckTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond, Parallel: true})
	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		time.Sleep(200 * time.Millisecond)
		return Healthy("late")
	}))

	results := agg.CheckAll(context.Background())
	result := results["slow"]
	if result.Status != StatusUnhealthy {
		t.Errorf("timed out check status = %v, want unhealthy", result.Status)
	}
	if !errors.Is(result.Error, ErrCheckTimeout) {
		t.Errorf("timed out check error = %v, want ErrCheckTimeout", result.Error)
	}
}

func TestAggregator_EvaluateOmitsEmptyValues(t *testing.T) {
	agg := NewAggregator()
	agg.Register("cpu", fixed("cpu", Healthy("ok").WithValue("10.0%")))
	agg.Register("database", fixed("database", Unhealthy("down", errors.New("refused"))))
	agg.RegisterAdvisory("memory", fixed("memory", Healthy("ok").WithValue("40.0%")))

	report := agg.Evaluate(context.Background())

	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", report.Status)
	}
	if report.Code() != 503 {
		t.Errorf("Code() = %d, want 503", report.Code())
	}
	if _, ok := report.Checks["database"]; ok {
		t.Error("a down database should be absent from checks")
	}
	if report.Checks["cpu"] != "10.0%" || report.Checks["memory"] != "40.0%" {
		t.Errorf("Checks = %v", report.Checks)
	}
	if len(report.Results) != 3 {
		t.Errorf("Results should include every check, got %d", len(report.Results))
	}
}
