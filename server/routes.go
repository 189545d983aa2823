package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/eventmonitor/config"
	"github.com/jonwraymond/eventmonitor/eventlog"
	"github.com/jonwraymond/eventmonitor/health"
	"github.com/jonwraymond/eventmonitor/identity"
	"github.com/jonwraymond/eventmonitor/observe"
)

// Routes.
const (
	RouteDashboard = "/{$}"
	RouteHealth    = "/health"
	RouteLiveness  = "/healthz"
	RouteEvents    = "/events"
	RouteMetrics   = "/metrics"
)

// New returns a mux serving h, with every route wrapped by mw.
// A nil mw disables instrumentation.
func New(h *Handler, mw *observe.Middleware) *http.ServeMux {
	h.setDefaults()
	if mw == nil {
		mw = observe.NewMiddleware(nil, nil, nil)
	}

	mux := http.NewServeMux()
	handle(mux, mw, http.MethodGet, RouteDashboard, http.HandlerFunc(h.Dashboard))
	handle(mux, mw, http.MethodGet, RouteHealth, health.Handler(h.Health, h.observeHealth))
	handle(mux, mw, http.MethodGet, RouteLiveness, health.LivenessHandler())
	handle(mux, mw, http.MethodGet, RouteEvents, http.HandlerFunc(h.ListEvents))
	handle(mux, mw, http.MethodPost, RouteEvents, http.HandlerFunc(h.RecordEvent))
	return mux
}

// MountMetrics serves the default Prometheus registry on GET /metrics.
// The OpenTelemetry Prometheus exporter registers there.
func MountMetrics(mux *http.ServeMux, mw *observe.Middleware) {
	if mw == nil {
		mw = observe.NewMiddleware(nil, nil, nil)
	}
	handle(mux, mw, http.MethodGet, RouteMetrics, promhttp.Handler())
}

func handle(mux *http.ServeMux, mw *observe.Middleware, method, route string, h http.Handler) {
	meta := observe.RouteMeta{Method: method, Route: route}
	if route == RouteDashboard {
		meta.Route = "/"
	}
	mux.Handle(method+" "+route, mw.Wrap(meta, h))
}

func (h *Handler) setDefaults() {
	if h.ServiceName == "" {
		h.ServiceName = config.DefaultServiceName
	}
	if h.Identity == nil {
		h.Identity = identity.NewStatic("", "")
	}
	if h.Health == nil {
		h.Health = health.NewAggregator()
	}
	if h.Logger == nil {
		h.Logger = observe.NopLogger()
	}
	if h.Metrics == nil {
		h.Metrics = observe.NopMetrics()
	}
	if h.Events == nil {
		h.Events = eventlog.New(CountEvents(h.Metrics))
	}
	if h.Now == nil {
		h.Now = time.Now
	}
	if h.View <= 0 {
		h.View = eventlog.DefaultView
	}
}
