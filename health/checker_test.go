package health

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("Status.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus_Code(t *testing.T) {
	tests := []struct {
		status Status
		want   int
	}{
		{StatusHealthy, http.StatusOK},
		{StatusDegraded, http.StatusServiceUnavailable},
		{StatusUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		if got := tt.status.Code(); got != tt.want {
			t.Errorf("%v.Code() = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestResultConstructors(t *testing.T) {
	err := errors.New("connection refused")

	tests := []struct {
		name   string
		result Result
		want   Status
	}{
		{"healthy", Healthy("ok"), StatusHealthy},
		{"degraded", Degraded("slow"), StatusDegraded},
		{"unhealthy", Unhealthy("down", err), StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Status != tt.want {
				t.Errorf("Status = %v, want %v", tt.result.Status, tt.want)
			}
			if tt.result.Timestamp.IsZero() {
				t.Error("Timestamp should not be zero")
			}
		})
	}

	if Unhealthy("down", err).Error != err {
		t.Error("Unhealthy should keep the error")
	}
}

func TestResult_Builders(t *testing.T) {
	err := errors.New("boom")
	result := Healthy("ok").
		WithValue("up").
		WithDetails(map[string]any{"k": "v"}).
		WithError(err)

	if result.Value != "up" {
		t.Errorf("Value = %q, want 'up'", result.Value)
	}
	if result.Details["k"] != "v" {
		t.Errorf("Details = %v", result.Details)
	}
	if result.Error != err {
		t.Errorf("Error = %v, want %v", result.Error, err)
	}
	if result.Status != StatusHealthy {
		t.Error("builders must not change status")
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0%"},
		{12.5, "12.5%"},
		{95, "95.0%"},
		{99.96, "100.0%"},
		{33.333333, "33.3%"},
	}

	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckerFunc(t *testing.T) {
	checker := NewCheckerFunc("probe", func(ctx context.Context) Result {
		return Degraded("slow")
	})

	if checker.Name() != "probe" {
		t.Errorf("Name() = %q, want 'probe'", checker.Name())
	}
	if got := checker.Check(context.Background()); got.Status != StatusDegraded {
		t.Errorf("Check().Status = %v, want degraded", got.Status)
	}
}
