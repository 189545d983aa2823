// Package health provides the health checks and aggregation policy for the
// service's health endpoint.
//
// A Checker reports a Status (Healthy, Degraded or Unhealthy) and an
// optional Value that is shown in the response, such as "12.5%" or "up".
// An Aggregator runs checkers and reduces their results to one status by
// taking the worst. Checkers registered with RegisterAdvisory are shown
// but never change the status.
//
// # Standard Checks
//
// NewStandard wires the checks used by the service:
//
//	agg := health.NewStandard(health.StandardConfig{
//	    CPUThreshold: 95,
//	    Database:     pinger,
//	})
//
//	report := agg.Evaluate(ctx)
//	// report.Status: healthy, degraded (cpu > 95%) or unhealthy (database down)
//	// report.Code(): 200 if healthy, 503 otherwise
//
// The memory check is advisory. Memory pressure is visible in the response
// but does not affect routing decisions.
//
// # HTTP Endpoints
//
//	http.Handle("GET /healthz", health.LivenessHandler())
//	http.Handle("GET /health", health.Handler(agg))
package health
