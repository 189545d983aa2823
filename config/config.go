package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/eventmonitor/identity"
	"github.com/jonwraymond/eventmonitor/observe"
	"github.com/jonwraymond/eventmonitor/observe/exporters"
)

// Defaults.
const (
	DefaultServiceName     = "VoyageView-Event-Monitor"
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultCPUThreshold    = 95.0
	DefaultMetadataTimeout = 2 * time.Second
	DefaultHealthTimeout   = 5 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the full service configuration.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Server   ServerConfig   `yaml:"server"`
	Identity IdentityConfig `yaml:"identity"`
	Health   HealthConfig   `yaml:"health"`
	Observe  ObserveConfig  `yaml:"observe"`
}

// ServiceConfig names the service in responses and telemetry.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// IdentityConfig selects the identity source.
type IdentityConfig struct {
	Source       string        `yaml:"source"`
	AZ           string        `yaml:"availability_zone"`
	InstanceID   string        `yaml:"instance_id"`
	MetadataURI  string        `yaml:"metadata_uri"`
	IMDSEndpoint string        `yaml:"imds_endpoint"`
	Timeout      time.Duration `yaml:"timeout"`
}

// HealthConfig configures /health.
type HealthConfig struct {
	CPUThreshold float64       `yaml:"cpu_threshold"`
	DatabaseURL  string        `yaml:"database_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ObserveConfig configures logging, tracing and metrics.
type ObserveConfig struct {
	LogLevel        string  `yaml:"log_level"`
	TracingExporter string  `yaml:"tracing_exporter"`
	SampleRatio     float64 `yaml:"sample_ratio"`
	MetricsExporter string  `yaml:"metrics_exporter"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Service: ServiceConfig{Name: DefaultServiceName},
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     30 * time.Second,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Identity: IdentityConfig{
			Source:  string(identity.SourceAuto),
			Timeout: DefaultMetadataTimeout,
		},
		Health: HealthConfig{
			CPUThreshold: DefaultCPUThreshold,
			Timeout:      DefaultHealthTimeout,
		},
		Observe: ObserveConfig{
			LogLevel:        "info",
			TracingExporter: exporters.None,
			SampleRatio:     1.0,
			MetricsExporter: exporters.None,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the process environment.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(data, &cfg, lookup); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config, lookup func(string) (string, bool)) error {
	expanded, err := expandEnv(string(data), lookup)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.lookup(key); ok && v != "" {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%w: %s=%q", ErrInvalidEnv, key, v))
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%w: %s=%q", ErrInvalidEnv, key, v))
		return
	}
	*dst = f
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%w: %s=%q", ErrInvalidEnv, key, v))
		return
	}
	*dst = d
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	env := &envReader{lookup: lookup}

	env.str("SERVICE_NAME", &cfg.Service.Name)

	env.str("HOST", &cfg.Server.Host)
	env.int("PORT", &cfg.Server.Port)
	env.duration("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	env.str("IDENTITY_SOURCE", &cfg.Identity.Source)
	env.str("AZ_NAME", &cfg.Identity.AZ)
	env.str("INSTANCE_ID", &cfg.Identity.InstanceID)
	env.str("ECS_CONTAINER_METADATA_URI_V4", &cfg.Identity.MetadataURI)
	env.str("IMDS_ENDPOINT", &cfg.Identity.IMDSEndpoint)
	env.duration("METADATA_TIMEOUT", &cfg.Identity.Timeout)

	env.float("CPU_DEGRADED_THRESHOLD", &cfg.Health.CPUThreshold)
	env.str("DATABASE_URL", &cfg.Health.DatabaseURL)

	env.str("LOG_LEVEL", &cfg.Observe.LogLevel)
	env.str("TRACING_EXPORTER", &cfg.Observe.TracingExporter)
	env.str("METRICS_EXPORTER", &cfg.Observe.MetricsExporter)

	return errors.Join(env.errs...)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w, got: %d", ErrInvalidPort, c.Server.Port)
	}
	if c.Health.CPUThreshold <= 0 || c.Health.CPUThreshold > 100 {
		return fmt.Errorf("%w, got: %v", ErrInvalidThreshold, c.Health.CPUThreshold)
	}
	if c.Identity.Timeout <= 0 || c.Health.Timeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if _, err := identity.ParseSource(c.Identity.Source); err != nil {
		return err
	}
	return c.ObserverConfig().Validate()
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ResolverConfig returns the identity resolver configuration.
func (c Config) ResolverConfig() identity.Config {
	source, _ := identity.ParseSource(c.Identity.Source)
	return identity.Config{
		Source:       source,
		AZ:           c.Identity.AZ,
		InstanceID:   c.Identity.InstanceID,
		MetadataURI:  c.Identity.MetadataURI,
		IMDSEndpoint: c.Identity.IMDSEndpoint,
		Timeout:      c.Identity.Timeout,
	}
}

// ObserverConfig returns the telemetry configuration.
func (c Config) ObserverConfig() observe.Config {
	return observe.Config{
		ServiceName:     c.Service.Name,
		Version:         c.Service.Version,
		TracingExporter: c.Observe.TracingExporter,
		SampleRatio:     c.Observe.SampleRatio,
		MetricsExporter: c.Observe.MetricsExporter,
		LogLevel:        c.Observe.LogLevel,
	}
}
