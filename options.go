package lodestone

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lodestone-ai/lodestone-go/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cfg        config.Config
	configFile string

	httpClient *http.Client
	embedder   Embedder

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithAPIKey sets the API key. Falls back to LODESTONE_API_KEY.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.APIKey = key
	})
}

// WithHost overrides the service host. Falls back to LODESTONE_HOST,
// then the production default.
func WithHost(host string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Host = host
	})
}

// WithConfigFile loads settings from a YAML file before other options
// apply, so explicit options win over the file.
func WithConfigFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.configFile = path
	})
}

// WithHTTPClient replaces the underlying HTTP client, e.g. to add a
// proxy or a custom transport.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithRequestTimeout bounds each HTTP call (not a whole Insert).
// Default: 30s.
func WithRequestTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Retry.RequestTimeout = d
	})
}

// WithRetry configures the retry schedule for transient failures.
// Defaults: 3 retries, 500ms base, 10s cap.
func WithRetry(maxRetries int, backoffBase, backoffCap time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Retry.MaxRetries = maxRetries
		c.cfg.Retry.BackoffBase = backoffBase
		c.cfg.Retry.BackoffCap = backoffCap
	})
}

// WithMaxBatchSize sets the record-count bound per ingestion batch.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Ingest.MaxBatchSize = size
	})
}

// WithMaxBatchBytes sets the byte-size bound per ingestion batch.
// Default: 4 MiB.
func WithMaxBatchBytes(bytes int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Ingest.MaxBatchBytes = bytes
	})
}

// WithMaxConcurrency sets the bound on in-flight ingestion batches.
// Default 1 (sequential, preserves causal insert order).
func WithMaxConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Ingest.MaxConcurrency = n
	})
}

// WithEmbedder sets a client-side embedding provider, enabling text
// search on custom (non-text-capable) knowledge bases.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (request counts, durations,
// retries, ingestion outcomes) on the given registerer.
// Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
