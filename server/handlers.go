package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jonwraymond/eventmonitor/eventlog"
	"github.com/jonwraymond/eventmonitor/health"
	"github.com/jonwraymond/eventmonitor/identity"
	"github.com/jonwraymond/eventmonitor/observe"
)

// maxEventBody bounds POST /events bodies.
const maxEventBody = 1 << 20

// RecordedMessage is the reply to a successful POST /events.
const RecordedMessage = "Event recorded"

// Handler serves the service endpoints. New fills zero-valued fields
// with defaults.
type Handler struct {
	ServiceName string
	Identity    identity.Resolver
	Health      *health.Aggregator
	Events      *eventlog.Log
	Logger      observe.Logger
	Metrics     observe.Metrics
	Now         func() time.Time

	// View is the number of events returned by GET /events.
	// Default: eventlog.DefaultView.
	View int
}

// Dashboard is the body of GET /.
type Dashboard struct {
	Service          string `json:"service"`
	Instance         string `json:"instance"`
	AvailabilityZone string `json:"availability_zone"`
	Message          string `json:"message"`
	Timestamp        string `json:"timestamp"`
}

// EventList is the body of GET /events.
type EventList struct {
	LoggedEvents []eventlog.Record `json:"logged_events"`
}

// EventRequest is the body of POST /events. Event is optional.
type EventRequest struct {
	Event *string `json:"event"`
}

// Dashboard reports the identity of the serving node.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	info := h.Identity.Resolve(r.Context())
	writeJSON(w, http.StatusOK, Dashboard{
		Service:          h.ServiceName,
		Instance:         info.InstanceID,
		AvailabilityZone: info.AvailabilityZone,
		Message:          "Hello! I am serving requests from " + info.AvailabilityZone,
		Timestamp:        h.Now().UTC().Format(eventlog.TimestampLayout),
	})
}

// observeHealth records the evaluation and logs every check that is not
// healthy. Advisory checks such as memory are logged even when the overall
// status is healthy.
func (h *Handler) observeHealth(ctx context.Context, report health.Report) {
	h.Metrics.RecordHealth(ctx, report.Status.String())

	fields := []observe.Field{{Key: "status", Value: report.Status.String()}}
	for name, res := range report.Results {
		if res.Status != health.StatusHealthy {
			fields = append(fields, observe.Field{Key: name, Value: res.Message})
		}
	}
	switch {
	case report.Status != health.StatusHealthy:
		h.Logger.Warn(ctx, "health check not healthy", fields...)
	case len(fields) > 1:
		h.Logger.Warn(ctx, "advisory health check not healthy", fields...)
	}
}

// ListEvents returns the most recent events in insertion order.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, EventList{LoggedEvents: h.Events.Recent(h.View)})
}

// RecordEvent appends an event. Missing, malformed or non-string event
// names are recorded as eventlog.DefaultEvent; the request is never rejected.
func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	name := decodeEventName(r.Body)
	info := h.Identity.Resolve(r.Context())

	rec := h.Events.Append(name, info.AvailabilityZone)
	h.Logger.Debug(r.Context(), "event recorded",
		observe.Field{Key: "event", Value: rec.Event},
		observe.Field{Key: "source_az", Value: rec.SourceAZ},
	)

	writeJSON(w, http.StatusCreated, map[string]string{"msg": RecordedMessage})
}

// CountEvents returns an eventlog option that counts every append in m.
func CountEvents(m observe.Metrics) eventlog.Option {
	return eventlog.WithObserver(func(rec eventlog.Record) {
		m.RecordEvent(context.Background(), rec.SourceAZ)
	})
}

func decodeEventName(body io.Reader) string {
	if body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(body, maxEventBody))
	if err != nil {
		return ""
	}
	var req EventRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Event == nil {
		return ""
	}
	return *req.Event
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
