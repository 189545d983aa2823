package observe

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricRequests = "http.server.requests"
	MetricErrors   = "http.server.errors"
	MetricDuration = "http.server.duration_ms"
	MetricEvents   = "events.recorded"
	MetricHealth   = "health.evaluations"
)

// Metrics records service metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records one served request.
	RecordRequest(ctx context.Context, meta RouteMeta, status int, duration time.Duration)

	// RecordEvent records one appended event.
	RecordEvent(ctx context.Context, sourceAZ string)

	// RecordHealth records one health evaluation and its overall status.
	RecordHealth(ctx context.Context, status string)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	eventCount   metric.Int64Counter
	healthCount  metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		MetricRequests,
		metric.WithDescription("Total number of HTTP requests served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		MetricErrors,
		metric.WithDescription("Total number of HTTP responses with a 5xx status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricDuration,
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	eventCount, err := meter.Int64Counter(
		MetricEvents,
		metric.WithDescription("Total number of events appended to the event log"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	healthCount, err := meter.Int64Counter(
		MetricHealth,
		metric.WithDescription("Total number of health evaluations by overall status"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		eventCount:   eventCount,
		healthCount:  healthCount,
	}, nil
}

func (m *metricsImpl) RecordRequest(ctx context.Context, meta RouteMeta, status int, duration time.Duration) {
	attrs := append(meta.Attributes(), attribute.Int("http.response.status_code", status))
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if status >= http.StatusInternalServerError {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordEvent(ctx context.Context, sourceAZ string) {
	m.eventCount.Add(ctx, 1, metric.WithAttributes(attribute.String("source_az", sourceAZ)))
}

func (m *metricsImpl) RecordHealth(ctx context.Context, status string) {
	m.healthCount.Add(ctx, 1, metric.WithAttributes(attribute.String("health.status", status)))
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) RecordRequest(context.Context, RouteMeta, int, time.Duration) {}
func (nopMetrics) RecordEvent(context.Context, string)                          {}
func (nopMetrics) RecordHealth(context.Context, string)                         {}
