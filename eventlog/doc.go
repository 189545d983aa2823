// Package eventlog provides the process-wide, in-memory event log.
//
// A Log is append-only for the lifetime of the process. Nothing is persisted
// and nothing is ever removed; readers only see a bounded suffix through
// Recent.
//
// # Basic Usage
//
//	log := eventlog.New()
//	log.Append("checkout", "us-east-1a")
//
//	for _, rec := range log.Recent(eventlog.DefaultView) {
//	    fmt.Println(rec.Event, rec.SourceAZ)
//	}
package eventlog
