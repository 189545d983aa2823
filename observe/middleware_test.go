package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type testStack struct {
	mw      *Middleware
	spans   *tracetest.SpanRecorder
	reader  *sdkmetric.ManualReader
	logs    *bytes.Buffer
	metrics Metrics
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	metrics, reader := newTestMetrics(t)
	logs := &bytes.Buffer{}

	return &testStack{
		mw:      NewMiddleware(NewTracer(tp.Tracer("test")), metrics, NewLoggerWithWriter("info", logs)),
		spans:   spans,
		reader:  reader,
		logs:    logs,
		metrics: metrics,
	}
}

func TestMiddleware_SuccessPath(t *testing.T) {
	s := newTestStack(t)
	meta := RouteMeta{Method: "POST", Route: "/events"}

	handler := s.mw.Wrap(meta, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"msg":"Event recorded"}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{}`)))

	if rec.Code != http.StatusCreated {
		t.Errorf("Status = %d, want 201", rec.Code)
	}
	if rec.Body.String() != `{"msg":"Event recorded"}` {
		t.Errorf("Body = %q, middleware must not modify the body", rec.Body.String())
	}

	spans := s.spans.Ended()
	if len(spans) != 1 || spans[0].Name() != "POST /events" {
		t.Fatalf("unexpected spans: %v", spans)
	}

	rm := collect(t, s.reader)
	if got := sumValue(t, rm, MetricRequests); got != 1 {
		t.Errorf("%s = %d, want 1", MetricRequests, got)
	}

	var entry map[string]any
	if err := json.Unmarshal(s.logs.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v\n%s", err, s.logs.String())
	}
	if entry["route"] != "/events" || entry["status"] != float64(201) {
		t.Errorf("log entry = %v", entry)
	}
	if entry["request_id"] == "" || entry["request_id"] == nil {
		t.Error("log entry should include request_id")
	}
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	s := newTestStack(t)

	handler := s.mw.Wrap(RouteMeta{Method: "GET", Route: "/"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hi")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var entry map[string]any
	_ = json.Unmarshal(s.logs.Bytes(), &entry)
	if entry["status"] != float64(200) {
		t.Errorf("logged status = %v, want 200", entry["status"])
	}
}

func TestMiddleware_ServerErrorLoggedAsWarn(t *testing.T) {
	s := newTestStack(t)

	handler := s.mw.Wrap(RouteMeta{Method: "GET", Route: "/health"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	var entry map[string]any
	_ = json.Unmarshal(s.logs.Bytes(), &entry)
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}

	rm := collect(t, s.reader)
	if got := sumValue(t, rm, MetricErrors); got != 1 {
		t.Errorf("%s = %d, want 1", MetricErrors, got)
	}
}

func TestMiddleware_RequestIDPropagated(t *testing.T) {
	s := newTestStack(t)
	handler := s.mw.Wrap(RouteMeta{Method: "GET", Route: "/"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Errorf("%s = %q, want req-123", RequestIDHeader, got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rec.Header().Get(RequestIDHeader); len(got) != 36 {
		t.Errorf("generated request id = %q, want a uuid", got)
	}
}

func TestMiddleware_PropagatesSpanContext(t *testing.T) {
	s := newTestStack(t)

	var inner trace.SpanContext
	handler := s.mw.Wrap(RouteMeta{Method: "GET", Route: "/"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = trace.SpanContextFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !inner.IsValid() {
		t.Fatal("handler context should carry a valid span")
	}
	if inner.SpanID() != s.spans.Ended()[0].SpanContext().SpanID() {
		t.Error("handler span should be the middleware span")
	}
}

func TestMiddleware_ContinuesIncomingTrace(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	s := newTestStack(t)
	handler := s.mw.Wrap(RouteMeta{Method: "GET", Route: "/events"}, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := s.spans.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if got := spans[0].SpanContext().TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("TraceID = %s, want the incoming trace", got)
	}
	if got := spans[0].Parent().SpanID().String(); got != "00f067aa0ba902b7" {
		t.Errorf("Parent SpanID = %s, want the incoming span", got)
	}
}

func TestMiddleware_NilComponents(t *testing.T) {
	mw := NewMiddleware(nil, nil, nil)
	handler := mw.Wrap(RouteMeta{Method: "GET", Route: "/"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("Status = %d, want 418", rec.Code)
	}
}

func TestMiddlewareFromObserver(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "svc", Quiet: true})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	mw, metrics, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver() error = %v", err)
	}
	if mw == nil || metrics == nil {
		t.Fatal("expected middleware and metrics")
	}
}
