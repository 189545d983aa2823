package health

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// Status is a health level. Larger values are worse, so the aggregate of
// several statuses is their maximum.
type Status int

const (
	StatusHealthy Status = iota
	StatusDegraded
	StatusUnhealthy
)

var statusNames = [...]string{
	StatusHealthy:   "healthy",
	StatusDegraded:  "degraded",
	StatusUnhealthy: "unhealthy",
}

// String returns the wire name of s, or "unknown".
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Code maps s to the response code: 200 when healthy, 503 otherwise.
func (s Status) Code() int {
	if s == StatusHealthy {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// Result is the outcome of one check.
type Result struct {
	Status Status

	// Value is the reading reported under the check's name, e.g. "12.5%"
	// or "up". An empty Value omits the check from the response.
	Value string

	Message   string
	Details   map[string]any
	Duration  time.Duration
	Timestamp time.Time
	Error     error
}

func newResult(s Status, message string, err error) Result {
	return Result{Status: s, Message: message, Error: err, Timestamp: time.Now()}
}

// Healthy returns a healthy result stamped with the current time.
func Healthy(message string) Result { return newResult(StatusHealthy, message, nil) }

// Degraded returns a degraded result stamped with the current time.
func Degraded(message string) Result { return newResult(StatusDegraded, message, nil) }

// Unhealthy returns an unhealthy result carrying err.
func Unhealthy(message string, err error) Result {
	return newResult(StatusUnhealthy, message, err)
}

// WithValue returns a copy of r reporting v.
func (r Result) WithValue(v string) Result {
	r.Value = v
	return r
}

// WithDetails returns a copy of r carrying details.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithError returns a copy of r carrying err. The status is unchanged.
func (r Result) WithError(err error) Result {
	r.Error = err
	return r
}

// FormatPercent renders a utilization reading as "<n.n>%".
func FormatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64) + "%"
}

// Checker produces one named reading.
//
// Contract:
//   - Check must honor ctx cancellation where it blocks.
//   - Check reports failures through Result, never by panicking.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc names fn as a Checker.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (f *CheckerFunc) Name() string { return f.name }

func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }
