package resilience

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds an operation when no timeout is configured.
const DefaultTimeout = 2 * time.Second

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for the operation.
	// Default: 2 seconds
	Timeout time.Duration
}

// Timeout runs a single attempt of an operation under a deadline.
// It never retries.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Timeout{config: config}
}

// Execute runs op once with a deadline. ErrTimeout is returned when the
// deadline passes before op returns, even if op ignores its context.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := Do(ctx, t, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Do runs op once under t's deadline and returns its value.
func Do[T any](ctx context.Context, t *Timeout, op func(context.Context) (T, error)) (T, error) {
	if t == nil {
		t = NewTimeout(TimeoutConfig{})
	}

	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		v, err := op(ctx)
		done <- outcome{value: v, err: err}
	}()

	var zero T
	select {
	case out := <-done:
		if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return out.value, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}
