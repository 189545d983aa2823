// Package observe provides observability primitives for the HTTP service.
//
// It bundles a JSON structured logger, an OpenTelemetry tracer and meter,
// and an HTTP middleware that records one span, a set of request metrics,
// and one log line per request. Exporter selection lives in the exporters
// subpackage.
package observe
