package observe

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// RequestIDHeader carries the request id in and out of the service.
const RequestIDHeader = "X-Request-ID"

// Middleware wraps HTTP handlers with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: handlers returned by Wrap are safe for concurrent use.
//   - Context: the request context carries the server span, parented on
//     any incoming trace context accepted by the global propagator.
//   - Ownership: request and response bodies pass through unmodified.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewNoopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, Metrics, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), metrics, nil
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Wrap instruments next as the handler for meta.
func (m *Middleware) Wrap(meta RouteMeta, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		parent := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := m.tracer.StartSpan(parent, meta)
		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start)
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		m.tracer.EndSpan(span, status)
		m.metrics.RecordRequest(ctx, meta, status, duration)

		fields := []Field{
			{Key: "request_id", Value: requestID},
			{Key: "method", Value: r.Method},
			{Key: "route", Value: meta.Route},
			{Key: "path", Value: r.URL.Path},
			{Key: "status", Value: status},
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}
		if status >= http.StatusInternalServerError {
			m.logger.Warn(ctx, "request completed with server error", fields...)
		} else {
			m.logger.Info(ctx, "request completed", fields...)
		}
	})
}
