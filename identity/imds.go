package identity

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"

	"github.com/jonwraymond/eventmonitor/observe"
	"github.com/jonwraymond/eventmonitor/resilience"
)

// DocumentClient is the part of the IMDS client used by the resolver.
type DocumentClient interface {
	GetInstanceIdentityDocument(ctx context.Context, params *imds.GetInstanceIdentityDocumentInput, optFns ...func(*imds.Options)) (*imds.GetInstanceIdentityDocumentOutput, error)
}

// IMDSConfig configures the EC2 instance metadata resolver.
type IMDSConfig struct {
	// Endpoint overrides the IMDS endpoint. Empty uses the SDK default.
	Endpoint string

	// Timeout bounds the request, including the session token fetch.
	// Default: 2 seconds
	Timeout time.Duration

	// Client overrides the IMDS client. Optional.
	Client DocumentClient

	// Logger receives a warning for each fallback. Optional.
	Logger observe.Logger
}

// IMDS resolves identity from the EC2 instance identity document.
type IMDS struct {
	client  DocumentClient
	timeout *resilience.Timeout
	logger  observe.Logger
}

// NewIMDS creates an EC2 instance metadata resolver. The SDK retryer is
// disabled so each Resolve makes a single attempt.
func NewIMDS(config IMDSConfig) *IMDS {
	if config.Client == nil {
		config.Client = imds.New(imds.Options{
			Endpoint:          config.Endpoint,
			ClientEnableState: imds.ClientEnabled,
			Retryer:           aws.NopRetryer{},
		})
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	return &IMDS{
		client:  config.Client,
		timeout: resilience.NewTimeout(resilience.TimeoutConfig{Timeout: config.Timeout}),
		logger:  config.Logger,
	}
}

// Resolve reads the instance identity document once. Any failure returns Fallback.
func (r *IMDS) Resolve(ctx context.Context) Info {
	info, err := resilience.Do(ctx, r.timeout, func(ctx context.Context) (Info, error) {
		out, err := r.client.GetInstanceIdentityDocument(ctx, &imds.GetInstanceIdentityDocumentInput{})
		if err != nil {
			return Info{}, err
		}
		return withDefaults(Info{
			AvailabilityZone: out.AvailabilityZone,
			InstanceID:       out.InstanceID,
		}), nil
	})
	if err != nil {
		r.logger.Warn(ctx, "instance identity document unavailable, using fallback identity",
			observe.Field{Key: "error", Value: err.Error()},
		)
		return Fallback
	}
	return info
}

var _ Resolver = (*IMDS)(nil)
