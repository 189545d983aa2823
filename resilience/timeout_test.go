package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimeout_Default(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{})

	if timeout.config.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", timeout.config.Timeout, DefaultTimeout)
	}
}

func TestTimeout_ExecuteSuccess(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	calls := 0
	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want exactly 1", calls)
	}
}

func TestTimeout_ExecuteErrorNotRetried(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	testErr := errors.New("test error")
	calls := 0
	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return testErr
	})

	if !errors.Is(err, testErr) {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want exactly 1", calls)
	}
}

func TestTimeout_ExecuteTimeout(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: 10 * time.Millisecond})

	start := time.Now()
	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("Execute() took %v, should return at the deadline", elapsed)
	}
}

func TestTimeout_ContextAwareOpMapsDeadline(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: 10 * time.Millisecond})

	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
}

func TestTimeout_ExecuteContextCancelled(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())

	err := timeout.Execute(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestDo_ReturnsValue(t *testing.T) {
	got, err := Do(context.Background(), NewTimeout(TimeoutConfig{Timeout: time.Second}),
		func(ctx context.Context) (string, error) {
			return "us-east-1a", nil
		})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != "us-east-1a" {
		t.Errorf("Do() = %q, want 'us-east-1a'", got)
	}
}

func TestDo_ZeroValueOnTimeout(t *testing.T) {
	got, err := Do(context.Background(), NewTimeout(TimeoutConfig{Timeout: 5 * time.Millisecond}),
		func(ctx context.Context) (int, error) {
			time.Sleep(100 * time.Millisecond)
			return 42, nil
		})

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Do() error = %v, want ErrTimeout", err)
	}
	if got != 0 {
		t.Errorf("Do() = %d, want zero value", got)
	}
}

func TestDo_NilTimeoutUsesDefault(t *testing.T) {
	got, err := Do(context.Background(), nil, func(ctx context.Context) (bool, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			return false, errors.New("no deadline")
		}
		return time.Until(deadline) <= DefaultTimeout, nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !got {
		t.Error("deadline should be bounded by DefaultTimeout")
	}
}
