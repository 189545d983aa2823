package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonwraymond/eventmonitor/observe"
)

// Source names an identity resolver.
type Source string

// Identity sources.
const (
	// SourceAuto selects SourceECS when a metadata URI is set, otherwise SourceStatic.
	SourceAuto   Source = "auto"
	SourceStatic Source = "static"
	SourceECS    Source = "ecs"
	SourceIMDS   Source = "imds"
)

// ParseSource parses a source name. An empty name is SourceAuto.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case "", SourceAuto:
		return SourceAuto, nil
	case SourceStatic:
		return SourceStatic, nil
	case SourceECS:
		return SourceECS, nil
	case SourceIMDS:
		return SourceIMDS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
}

// Config selects and configures a resolver.
type Config struct {
	Source       Source
	AZ           string
	InstanceID   string
	MetadataURI  string
	IMDSEndpoint string
	Timeout      time.Duration
}

// New builds the resolver selected by config.Source.
func New(config Config, logger observe.Logger) (Resolver, error) {
	source := config.Source
	if source == "" || source == SourceAuto {
		source = SourceStatic
		if config.MetadataURI != "" {
			source = SourceECS
		}
	}

	switch source {
	case SourceStatic:
		return NewStatic(config.AZ, config.InstanceID), nil
	case SourceECS:
		if config.MetadataURI == "" {
			return nil, ErrMissingMetadataURI
		}
		return NewTaskMetadata(TaskMetadataConfig{
			BaseURL: config.MetadataURI,
			Timeout: config.Timeout,
			Logger:  logger,
		}), nil
	case SourceIMDS:
		return NewIMDS(IMDSConfig{
			Endpoint: config.IMDSEndpoint,
			Timeout:  config.Timeout,
			Logger:   logger,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
}
