package health

import (
	"context"
	"encoding/json"
	"net/http"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// This is a simple check that the service is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// Response is the JSON body of the health endpoint.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewResponse converts a report to its wire form.
func NewResponse(report Report) Response {
	checks := report.Checks
	if checks == nil {
		checks = map[string]string{}
	}
	return Response{
		Status: report.Status.String(),
		Checks: checks,
	}
}

// ReportFunc observes a report before it is written.
type ReportFunc func(ctx context.Context, report Report)

// Handler returns an HTTP handler that evaluates agg and responds with
// 200 when healthy and 503 otherwise. Each observer sees the report first.
func Handler(agg *Aggregator, observers ...ReportFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := agg.Evaluate(r.Context())
		for _, fn := range observers {
			fn(r.Context(), report)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(report.Code())
		_ = json.NewEncoder(w).Encode(NewResponse(report))
	}
}
