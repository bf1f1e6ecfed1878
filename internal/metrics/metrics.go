package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the SDK's prometheus collectors. Nil-safe: a nil
// *Metrics records nothing, so instrumentation stays opt-in.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RetriesTotal    *prometheus.CounterVec
	RecordsIngested *prometheus.CounterVec
	BatchesTotal    *prometheus.CounterVec
}

// New creates and registers SDK metrics on the given registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lodestone",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total API requests by operation and status.",
		}, []string{"operation", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lodestone",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		RetriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lodestone",
			Subsystem: "client",
			Name:      "retries_total",
			Help:      "Total retry attempts by operation and reason.",
		}, []string{"operation", "reason"}),
		RecordsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lodestone",
			Subsystem: "client",
			Name:      "records_ingested_total",
			Help:      "Total records ingested by outcome.",
		}, []string{"outcome"}),
		BatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lodestone",
			Subsystem: "client",
			Name:      "batches_total",
			Help:      "Total ingestion batches by outcome.",
		}, []string{"outcome"}),
	}

	if err := registerOrReuse(reg, &m.RequestsTotal); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.RequestDuration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.RetriesTotal); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.RecordsIngested); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.BatchesTotal); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one, so
// two clients may share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("lodestone: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("lodestone: register metric: %w", err)
	}
	return nil
}

// ObserveRequest records one API request outcome.
func (m *Metrics) ObserveRequest(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(seconds)
}

// ObserveRetry records one retry attempt.
func (m *Metrics) ObserveRetry(operation, reason string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(operation, reason).Inc()
}

// ObserveIngestion records batch and record outcomes of an insert.
// Records rejected by pre-flight validation report as "invalid"; they
// never formed a batch, so they contribute nothing to the batch totals.
func (m *Metrics) ObserveIngestion(succeeded, failed, invalid, okBatches, failedBatches int) {
	if m == nil {
		return
	}
	m.RecordsIngested.WithLabelValues("ok").Add(float64(succeeded))
	m.RecordsIngested.WithLabelValues("failed").Add(float64(failed))
	m.RecordsIngested.WithLabelValues("invalid").Add(float64(invalid))
	m.BatchesTotal.WithLabelValues("ok").Add(float64(okBatches))
	m.BatchesTotal.WithLabelValues("failed").Add(float64(failedBatches))
}
