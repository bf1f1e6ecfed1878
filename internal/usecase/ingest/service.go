// Package ingest implements the batch ingestion engine: up-front
// validation, order-preserving partitioning, sequential or bounded
// concurrent submission, and partial-failure aggregation.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
	"github.com/lodestone-ai/lodestone-go/internal/logger"
	"github.com/lodestone-ai/lodestone-go/internal/metrics"
)

// Options bounds one insert call. Zero fields fall back to the service
// defaults configured at construction.
type Options struct {
	MaxBatchSize  int
	MaxBatchBytes int
	// Concurrency > 1 trades strict submission order for throughput.
	Concurrency int
}

// Service is the batch ingestion engine.
type Service struct {
	submit   BatchSubmitter
	metrics  *metrics.Metrics
	defaults Options
}

// New creates an ingestion service with the given defaults.
func New(submit BatchSubmitter, m *metrics.Metrics, defaults Options) *Service {
	return &Service{submit: submit, metrics: m, defaults: defaults}
}

// Insert validates, partitions, and submits records under the given
// contract snapshot, returning a per-batch report. A failed batch never
// aborts its siblings; the caller inspects PerBatchErrors to retry the
// failed subset.
func (s *Service) Insert(
	ctx context.Context,
	contractID string, model domain.ModelSpec,
	records []domain.Record, opts Options,
) (domain.IngestionReport, error) {
	opts = s.withDefaults(opts)
	if err := validateOptions(opts); err != nil {
		return domain.IngestionReport{}, err
	}

	collector := domain.NewReportCollector(len(records))
	if len(records) == 0 {
		return collector.Report(), nil
	}

	// Pre-flight validation keeps data the server is guaranteed to
	// reject out of the network path entirely.
	valid := make([]domain.Record, 0, len(records))
	for i, r := range records {
		if err := r.ValidateForModel(model); err != nil {
			collector.AddFailure(-1, 1, fmt.Errorf("%w: record %d: %w", domain.ErrValidation, i, err))
			continue
		}
		valid = append(valid, r)
	}

	batches := partition(valid, opts.MaxBatchSize, opts.MaxBatchBytes)

	log := logger.FromContext(ctx)
	log.Debug("submitting batches",
		zap.String("contract_id", contractID),
		zap.Int("records", len(records)),
		zap.Int("valid", len(valid)),
		zap.Int("batches", len(batches)),
		zap.Int("concurrency", opts.Concurrency),
	)

	if opts.Concurrency > 1 {
		s.submitConcurrent(ctx, contractID, model, batches, opts.Concurrency, collector)
	} else {
		s.submitSequential(ctx, contractID, model, batches, collector)
	}

	report := collector.Report()

	// Validation failures carry batch index -1: they never formed a
	// batch and must not count against the batch totals.
	var failedBatches int
	for _, be := range report.PerBatchErrors {
		if be.BatchIndex >= 0 {
			failedBatches++
		}
	}
	invalid := len(records) - len(valid)
	s.metrics.ObserveIngestion(report.Succeeded, report.Failed-invalid, invalid,
		len(batches)-failedBatches, failedBatches)
	return report, nil
}

// submitSequential preserves causal insert order as the server observes it.
func (s *Service) submitSequential(
	ctx context.Context, contractID string, model domain.ModelSpec,
	batches []batch, collector *domain.ReportCollector,
) {
	for _, b := range batches {
		if ctx.Err() != nil {
			collector.AddFailure(b.index, len(b.records), ctx.Err())
			continue
		}
		s.submitOne(ctx, contractID, model, b, collector)
	}
}

// submitConcurrent submits batches through a bounded worker window.
// Workers share nothing but the collector, which serializes appends.
func (s *Service) submitConcurrent(
	ctx context.Context, contractID string, model domain.ModelSpec,
	batches []batch, concurrency int, collector *domain.ReportCollector,
) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, b := range batches {
		if gctx.Err() != nil {
			collector.AddFailure(b.index, len(b.records), gctx.Err())
			continue
		}
		b := b
		g.Go(func() error {
			s.submitOne(gctx, contractID, model, b, collector)
			// Failures land in the report; the group only propagates
			// cancellation.
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) submitOne(
	ctx context.Context, contractID string, model domain.ModelSpec,
	b batch, collector *domain.ReportCollector,
) {
	if err := s.submit.SubmitBatch(ctx, contractID, model.Identifier, b.kind, b.records); err != nil {
		collector.AddFailure(b.index, len(b.records), err)
		return
	}
	collector.AddSuccess(len(b.records))
}

func (s *Service) withDefaults(opts Options) Options {
	if opts.MaxBatchSize == 0 {
		opts.MaxBatchSize = s.defaults.MaxBatchSize
	}
	if opts.MaxBatchBytes == 0 {
		opts.MaxBatchBytes = s.defaults.MaxBatchBytes
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = s.defaults.Concurrency
	}
	return opts
}

func validateOptions(opts Options) error {
	if opts.MaxBatchSize <= 0 {
		return fmt.Errorf("%w: max batch size must be positive, got %d",
			domain.ErrInvalidConfig, opts.MaxBatchSize)
	}
	if opts.MaxBatchBytes <= 0 {
		return fmt.Errorf("%w: max batch bytes must be positive, got %d",
			domain.ErrInvalidConfig, opts.MaxBatchBytes)
	}
	if opts.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive, got %d",
			domain.ErrInvalidConfig, opts.Concurrency)
	}
	return nil
}
