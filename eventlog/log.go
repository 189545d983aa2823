package eventlog

import (
	"sync"
	"time"
)

// DefaultEvent is recorded when a caller does not name the event.
const DefaultEvent = "generic_event"

// DefaultView is the number of records returned by GET /events.
const DefaultView = 10

// TimestampLayout is the ISO-8601 layout used for record timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Record is a single logged event. Records are immutable once appended.
type Record struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	SourceAZ  string `json:"source_az"`
}

// Option configures a Log.
type Option func(*Log)

// WithClock sets the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// WithObserver registers a callback invoked after every append.
// The callback runs outside the lock.
func WithObserver(fn func(Record)) Option {
	return func(l *Log) {
		l.onAppend = fn
	}
}

// Log is an append-only sequence of records.
//
// Contract:
// - Concurrency: safe for concurrent use; Append and Recent are serialized.
// - Ordering: timestamps are taken under the lock, so they never decrease
// in insertion order as long as the clock does not regress.
type Log struct {
	mu       sync.RWMutex
	records  []Record
	now      func() time.Time
	onAppend func(Record)
}

// New creates an empty log.
func New(opts ...Option) *Log {
	l := &Log{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records an event from the given availability zone.
// An empty name is recorded as DefaultEvent.
func (l *Log) Append(name, az string) Record {
	if name == "" {
		name = DefaultEvent
	}

	l.mu.Lock()
	rec := Record{
		Timestamp: l.now().UTC().Format(TimestampLayout),
		Event:     name,
		SourceAZ:  az,
	}
	l.records = append(l.records, rec)
	l.mu.Unlock()

	if l.onAppend != nil {
		l.onAppend(rec)
	}
	return rec
}

// Recent returns up to n of the most recent records in insertion order.
// The returned slice is a copy and may be modified by the caller.
func (l *Log) Recent(n int) []Record {
	if n <= 0 {
		return []Record{}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	start := len(l.records) - n
	if start < 0 {
		start = 0
	}
	out := make([]Record, len(l.records)-start)
	copy(out, l.records[start:])
	return out
}

// Len returns the total number of records ever appended.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
