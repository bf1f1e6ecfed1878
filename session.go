package lodestone

import (
	"context"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
	"github.com/lodestone-ai/lodestone-go/internal/logger"
	ingestuc "github.com/lodestone-ai/lodestone-go/internal/usecase/ingest"
	searchuc "github.com/lodestone-ai/lodestone-go/internal/usecase/search"
)

// Session binds operations to one knowledge base and its embedding
// model. A session is an immutable snapshot taken at Create/Select
// time: replacing the client's active contract never affects in-flight
// operations on sessions already handed out.
type Session struct {
	contractID string
	model      domain.ModelSpec
	client     *Client
}

// ContractID returns the bound contract identifier.
func (s *Session) ContractID() string { return s.contractID }

// Model returns the bound embedding model spec.
func (s *Session) Model() ModelSpec { return fromDomainSpec(s.model) }

// InsertOptions tunes one Insert call. Zero fields use client defaults.
type InsertOptions struct {
	MaxBatchSize  int
	MaxBatchBytes int
	// MaxConcurrency > 1 submits batches through a bounded worker
	// window, trading strict insert order for throughput.
	MaxConcurrency int
}

// Insert validates, batches, and submits records, returning a report of
// per-batch outcomes. A failed batch never aborts its siblings;
// Succeeded+Failed always equals TotalRecords. Ingestion is
// at-least-once: batches acknowledged before a cancellation are not
// rolled back.
func (s *Session) Insert(ctx context.Context, records []Record, opts ...InsertOptions) (IngestionReport, error) {
	ctx = logger.ContextWithLogger(ctx, s.client.logger)

	var o InsertOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	report, err := s.client.ingestSvc.Insert(ctx, s.contractID, s.model,
		toDomainRecords(records), ingestuc.Options{
			MaxBatchSize:  o.MaxBatchSize,
			MaxBatchBytes: o.MaxBatchBytes,
			Concurrency:   o.MaxConcurrency,
		})
	if err != nil {
		return IngestionReport{}, err
	}
	return fromDomainReport(report), nil
}

// SearchOptions tunes one Search or Query call.
type SearchOptions struct {
	// Rerank requests server-side re-ranking. When the service cannot
	// re-rank, results come back in plain score order instead of
	// failing.
	Rerank bool
	// Field restricts search to one field of CSV-sourced contracts.
	Field string
	// Level is the search depth (0..4, default 2).
	Level int
}

// Search runs a text search. Fails with ErrUnsupportedOperation, before
// any network call, when the model is not text-capable and no local
// embedder is configured. topN above the server ceiling is clamped.
func (s *Session) Search(ctx context.Context, query string, topN int, opts ...SearchOptions) ([]SearchResult, error) {
	ctx = logger.ContextWithLogger(ctx, s.client.logger)

	var o SearchOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	results, err := s.client.searchSvc.Search(ctx, s.contractID, s.model, query, topN,
		searchuc.Options{Rerank: o.Rerank, Field: o.Field, Level: o.Level})
	if err != nil {
		return nil, err
	}
	return fromDomainResults(results), nil
}

// Query runs a raw vector query. Fails with ErrDimensionMismatch,
// before any network call, when the model dimension is known and the
// vector length differs.
func (s *Session) Query(ctx context.Context, vector []float32, topN int, opts ...SearchOptions) ([]SearchResult, error) {
	ctx = logger.ContextWithLogger(ctx, s.client.logger)

	var o SearchOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	results, err := s.client.searchSvc.Query(ctx, s.contractID, s.model, vector, topN,
		searchuc.Options{Level: o.Level})
	if err != nil {
		return nil, err
	}
	return fromDomainResults(results), nil
}

// Fetch looks up records by id. Missing ids map to entries with
// Found=false; partial results are the normal case.
func (s *Session) Fetch(ctx context.Context, ids []string) (map[string]FetchedRecord, error) {
	ctx = logger.ContextWithLogger(ctx, s.client.logger)

	records, err := s.client.searchSvc.Fetch(ctx, s.contractID, ids)
	if err != nil {
		return nil, err
	}
	return fromDomainFetched(records), nil
}

// EntryCount returns the number of records indexed under the contract.
func (s *Session) EntryCount(ctx context.Context) (int, error) {
	ctx = logger.ContextWithLogger(ctx, s.client.logger)
	return s.client.contractSvc.EntryCount(ctx, s.contractID)
}
