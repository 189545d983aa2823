package config

import "errors"

var (
	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("config: missing required environment variables")

	// ErrInvalidEnv indicates an environment variable that could not be parsed.
	ErrInvalidEnv = errors.New("config: invalid environment variable")

	// ErrInvalidPort indicates a port outside 1-65535.
	ErrInvalidPort = errors.New("config: port must be between 1 and 65535")

	// ErrInvalidThreshold indicates a CPU threshold outside (0, 100].
	ErrInvalidThreshold = errors.New("config: cpu threshold must be in (0, 100]")

	// ErrInvalidTimeout indicates a non-positive timeout.
	ErrInvalidTimeout = errors.New("config: timeouts must be positive")
)
