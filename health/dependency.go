package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonwraymond/eventmonitor/resilience"
)

// Up is reported as the value of a reachable dependency.
const Up = "up"

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts an ordinary function to a Pinger.
type PingerFunc func(ctx context.Context) error

// Ping calls f(ctx).
func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// AlwaysUp is a stub Pinger for deployments without a real dependency.
func AlwaysUp() Pinger {
	return PingerFunc(func(context.Context) error { return nil })
}

// DependencyChecker reports unhealthy when its dependency cannot be reached.
// A reachable dependency is reported as "up"; an unreachable one is omitted
// from the response checks.
type DependencyChecker struct {
	name   string
	pinger Pinger
}

// NewDependencyChecker creates a checker named name. A nil pinger is AlwaysUp.
func NewDependencyChecker(name string, pinger Pinger) *DependencyChecker {
	if pinger == nil {
		pinger = AlwaysUp()
	}
	return &DependencyChecker{name: name, pinger: pinger}
}

// Name returns the name of this checker.
func (d *DependencyChecker) Name() string {
	return d.name
}

// Check pings the dependency once.
func (d *DependencyChecker) Check(ctx context.Context) Result {
	if err := d.pinger.Ping(ctx); err != nil {
		return Unhealthy(fmt.Sprintf("%s unreachable", d.name), err)
	}
	return Healthy(fmt.Sprintf("%s connected", d.name)).WithValue(Up)
}

// DefaultPingTimeout bounds one PostgresPinger round-trip.
const DefaultPingTimeout = 2 * time.Second

// PostgresPinger pings a PostgreSQL database through a small pgx pool.
type PostgresPinger struct {
	pool    *pgxpool.Pool
	timeout *resilience.Timeout
}

// NewPostgresPinger parses dsn and creates a pool. The pool connects
// lazily, so an unreachable database is reported by Ping rather than here.
func NewPostgresPinger(ctx context.Context, dsn string) (*PostgresPinger, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnIdleTime = 5 * time.Minute
	config.ConnConfig.ConnectTimeout = 2 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &PostgresPinger{
		pool:    pool,
		timeout: resilience.NewTimeout(resilience.TimeoutConfig{Timeout: DefaultPingTimeout}),
	}, nil
}

// Ping acquires a connection and round-trips to the server. A ping that
// outlives DefaultPingTimeout fails with resilience.ErrTimeout.
func (p *PostgresPinger) Ping(ctx context.Context) error {
	return p.timeout.Execute(ctx, p.pool.Ping)
}

// Close releases the pool.
func (p *PostgresPinger) Close() {
	p.pool.Close()
}

var _ Pinger = (*PostgresPinger)(nil)
