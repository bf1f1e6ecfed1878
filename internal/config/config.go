package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

// Defaults for the client configuration surface.
const (
	DefaultHost           = "api.lodestone.ai"
	DefaultMaxBatchSize   = 100
	DefaultMaxBatchBytes  = 4 << 20
	DefaultMaxConcurrency = 1
	DefaultMaxRetries     = 3
	DefaultBackoffBase    = 500 * time.Millisecond
	DefaultBackoffCap     = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second

	// Server-enforced ceilings. topN above the ceiling is clamped, batch
	// sizes above the ceiling are rejected by the service itself.
	ServerTopNCeiling  = 20
	ServerMaxBatchSize = 1000
)

// Environment variables honored as fallbacks.
const (
	EnvAPIKey = "LODESTONE_API_KEY"
	EnvHost   = "LODESTONE_HOST"
)

// Config holds the lodestone client configuration.
type Config struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`

	Ingest  IngestConfig  `yaml:"ingest"`
	Retry   RetryConfig   `yaml:"retry"`
	Logging LoggingConfig `yaml:"logging"`
}

// IngestConfig holds batching settings.
type IngestConfig struct {
	MaxBatchSize   int `yaml:"max_batch_size"`
	MaxBatchBytes  int `yaml:"max_batch_bytes"`
	MaxConcurrency int `yaml:"max_concurrency"`
}

// RetryConfig holds retry and timeout settings.
type RetryConfig struct {
	MaxRetries     int           `yaml:"max_retries"`
	BackoffBase    time.Duration `yaml:"backoff_base"`
	BackoffCap     time.Duration `yaml:"backoff_cap"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// UnmarshalYAML decodes durations from strings like "500ms".
func (r *RetryConfig) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		MaxRetries     *int   `yaml:"max_retries"`
		BackoffBase    string `yaml:"backoff_base"`
		BackoffCap     string `yaml:"backoff_cap"`
		RequestTimeout string `yaml:"request_timeout"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	if aux.MaxRetries != nil {
		r.MaxRetries = *aux.MaxRetries
	}
	durations := []struct {
		name  string
		raw   string
		field *time.Duration
	}{
		{"backoff_base", aux.BackoffBase, &r.BackoffBase},
		{"backoff_cap", aux.BackoffCap, &r.BackoffCap},
		{"request_timeout", aux.RequestTimeout, &r.RequestTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.field = parsed
	}
	return nil
}

// LoggingConfig holds logging settings. A non-empty Level turns SDK
// logging on; Env picks the output format (prod = JSON, dev/local =
// console), defaulting to prod.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Env   string `yaml:"env"`   // prod, dev, local
}

// Default returns a Config populated with defaults and env fallbacks.
func Default() Config {
	cfg := Config{
		Host:   DefaultHost,
		APIKey: os.Getenv(EnvAPIKey),
		Ingest: IngestConfig{
			MaxBatchSize:   DefaultMaxBatchSize,
			MaxBatchBytes:  DefaultMaxBatchBytes,
			MaxConcurrency: DefaultMaxConcurrency,
		},
		Retry: RetryConfig{
			MaxRetries:     DefaultMaxRetries,
			BackoffBase:    DefaultBackoffBase,
			BackoffCap:     DefaultBackoffCap,
			RequestTimeout: DefaultRequestTimeout,
		},
	}
	if host := os.Getenv(EnvHost); host != "" {
		cfg.Host = host
	}
	return cfg
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails fast on malformed settings so a bad value never
// surfaces mid-operation.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: api key required (set %s or api_key)",
			domain.ErrInvalidConfig, EnvAPIKey)
	}
	if c.Host == "" {
		return fmt.Errorf("%w: host required", domain.ErrInvalidConfig)
	}
	if c.Ingest.MaxBatchSize <= 0 {
		return fmt.Errorf("%w: max_batch_size must be positive, got %d",
			domain.ErrInvalidConfig, c.Ingest.MaxBatchSize)
	}
	if c.Ingest.MaxBatchSize > ServerMaxBatchSize {
		return fmt.Errorf("%w: max_batch_size %d exceeds server limit %d",
			domain.ErrInvalidConfig, c.Ingest.MaxBatchSize, ServerMaxBatchSize)
	}
	if c.Ingest.MaxBatchBytes <= 0 {
		return fmt.Errorf("%w: max_batch_bytes must be positive, got %d",
			domain.ErrInvalidConfig, c.Ingest.MaxBatchBytes)
	}
	if c.Ingest.MaxConcurrency <= 0 {
		return fmt.Errorf("%w: max_concurrency must be positive, got %d",
			domain.ErrInvalidConfig, c.Ingest.MaxConcurrency)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative, got %d",
			domain.ErrInvalidConfig, c.Retry.MaxRetries)
	}
	if c.Retry.BackoffBase <= 0 || c.Retry.BackoffCap < c.Retry.BackoffBase {
		return fmt.Errorf("%w: backoff base %s and cap %s are inconsistent",
			domain.ErrInvalidConfig, c.Retry.BackoffBase, c.Retry.BackoffCap)
	}
	if c.Retry.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive, got %s",
			domain.ErrInvalidConfig, c.Retry.RequestTimeout)
	}
	return nil
}
