package observe

import "errors"

// Errors returned by Config.Validate.
var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSampleRatio     = errors.New("observe: sample ratio must be between 0.0 and 1.0")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")
)

// Bounds of Config.SampleRatio.
const (
	MinSampleRatio = 0.0
	MaxSampleRatio = 1.0
)

// RedactedFields are log field keys whose values are replaced before output.
// Keys match exactly.
var RedactedFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"authorization",
	"credential",
	"database_url",
}
