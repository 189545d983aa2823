package identity

import "context"

// Defaults used when a source omits a value.
const (
	DefaultAZ       = "Unknown-AZ"
	DefaultInstance = "Localhost"
)

// Values reported when the metadata source cannot be read.
const (
	FallbackAZ       = "Error-Fetching-AZ"
	FallbackInstance = "Error-Instance"
)

// Info identifies the node serving a request.
type Info struct {
	AvailabilityZone string `json:"availability_zone"`
	InstanceID       string `json:"instance_id"`
}

// Fallback is the identity reported on any metadata failure.
var Fallback = Info{
	AvailabilityZone: FallbackAZ,
	InstanceID:       FallbackInstance,
}

// Resolver derives the identity of the running node.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: blocking implementations must honor cancellation/deadlines.
// - Errors: Resolve never fails; degraded sources return Fallback.
type Resolver interface {
	Resolve(ctx context.Context) Info
}

// ResolverFunc adapts an ordinary function to a Resolver.
type ResolverFunc func(ctx context.Context) Info

// Resolve calls f(ctx).
func (f ResolverFunc) Resolve(ctx context.Context) Info {
	return f(ctx)
}

// withDefaults fills empty fields with DefaultAZ and DefaultInstance.
func withDefaults(info Info) Info {
	if info.AvailabilityZone == "" {
		info.AvailabilityZone = DefaultAZ
	}
	if info.InstanceID == "" {
		info.InstanceID = DefaultInstance
	}
	return info
}

// Static reports fixed values, typically read from AZ_NAME and INSTANCE_ID.
type Static struct {
	info Info
}

// NewStatic creates a static resolver. Empty values fall back to
// DefaultAZ and DefaultInstance.
func NewStatic(az, instanceID string) *Static {
	return &Static{info: withDefaults(Info{
		AvailabilityZone: az,
		InstanceID:       instanceID,
	})}
}

// Resolve returns the configured identity.
func (s *Static) Resolve(context.Context) Info {
	return s.info
}

var _ Resolver = (*Static)(nil)
