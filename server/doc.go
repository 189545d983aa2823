// Package server exposes the identity, health and event log over HTTP.
//
// Routes:
//   - GET /          identity dashboard
//   - GET /health    aggregated health, 200 when healthy and 503 otherwise
//   - GET /healthz   liveness
//   - GET /events    the most recent events
//   - POST /events   append an event
//   - GET /metrics   Prometheus scrape endpoint (see MountMetrics)
//
// Every route is wrapped by observe.Middleware, which adds a request id,
// a server span, request metrics and one log line.
package server
