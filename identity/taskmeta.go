package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonwraymond/eventmonitor/observe"
	"github.com/jonwraymond/eventmonitor/resilience"
)

// maxMetadataBody caps the size of a task metadata response.
const maxMetadataBody = 1 << 20

// TaskMetadataConfig configures the ECS task metadata resolver.
type TaskMetadataConfig struct {
	// BaseURL is the value of ECS_CONTAINER_METADATA_URI_V4.
	BaseURL string

	// Timeout bounds the single GET request.
	// Default: 2 seconds
	Timeout time.Duration

	// Client is the HTTP client used for the request.
	// Default: a client with no timeout of its own
	Client *http.Client

	// Logger receives a warning for each fallback. Optional.
	Logger observe.Logger
}

// TaskMetadata resolves identity from the ECS task metadata endpoint.
type TaskMetadata struct {
	baseURL string
	client  *http.Client
	timeout *resilience.Timeout
	logger  observe.Logger
}

// NewTaskMetadata creates an ECS task metadata resolver.
func NewTaskMetadata(config TaskMetadataConfig) *TaskMetadata {
	if config.Client == nil {
		config.Client = &http.Client{}
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	return &TaskMetadata{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		client:  config.Client,
		timeout: resilience.NewTimeout(resilience.TimeoutConfig{Timeout: config.Timeout}),
		logger:  config.Logger,
	}
}

// taskResponse is the subset of the v4 task metadata document that is used.
type taskResponse struct {
	TaskARN          string `json:"TaskARN"`
	AvailabilityZone string `json:"AvailabilityZone"`
}

// Resolve fetches <base>/task once. Any failure returns Fallback.
func (m *TaskMetadata) Resolve(ctx context.Context) Info {
	info, err := resilience.Do(ctx, m.timeout, m.fetch)
	if err != nil {
		m.logger.Warn(ctx, "task metadata unavailable, using fallback identity",
			observe.Field{Key: "url", Value: m.baseURL + "/task"},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return Fallback
	}
	return info
}

func (m *TaskMetadata) fetch(ctx context.Context) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/task", nil)
	if err != nil {
		return Info{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return Info{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Info{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataBody))
	if err != nil {
		return Info{}, fmt.Errorf("read body: %w", err)
	}

	// Unmarshal rejects trailing data; a null document leaves task nil.
	var task *taskResponse
	if err := json.Unmarshal(body, &task); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}
	if task == nil {
		return Info{}, fmt.Errorf("%w: null document", ErrMalformedMetadata)
	}

	return withDefaults(Info{
		AvailabilityZone: task.AvailabilityZone,
		InstanceID:       taskID(task.TaskARN),
	}), nil
}

// taskID returns the last "/" segment of a task ARN, or "" if there is none.
func taskID(arn string) string {
	if arn == "" {
		return ""
	}
	return arn[strings.LastIndex(arn, "/")+1:]
}

var _ Resolver = (*TaskMetadata)(nil)
