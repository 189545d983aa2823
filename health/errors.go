package health

import "errors"

var (
	// ErrCheckFailed marks a reading past its critical limit.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is set on results cut off by the evaluation deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned by Check for an unregistered name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrNoSample is returned when a sampler yields no reading.
	ErrNoSample = errors.New("health: no sample available")
)
