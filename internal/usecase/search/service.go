// Package search implements the query/search engine: request building,
// capability checks, id-fetch chunking, and normalization of the
// service's heterogeneous response shapes.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
	"github.com/lodestone-ai/lodestone-go/internal/logger"
)

// DefaultLevel is the service's default search depth (0..4).
const DefaultLevel = 2

// Options tunes a single search or query call.
type Options struct {
	// Rerank asks the service to re-rank results with its secondary
	// relevance model. Unavailable re-ranking degrades to the plain
	// score order instead of failing.
	Rerank bool
	// Field restricts text search to one field of CSV-sourced contracts.
	Field string
	// Level is the search depth (0..4); zero means DefaultLevel.
	Level int
}

// Service is the query/search engine.
type Service struct {
	idx          IndexReader
	embed        domain.Embedder // optional, enables text search on custom models
	topNCeiling  int
	maxFetchSize int
}

// New creates a search service. embed may be nil.
func New(idx IndexReader, embed domain.Embedder, topNCeiling, maxFetchSize int) *Service {
	return &Service{
		idx:          idx,
		embed:        embed,
		topNCeiling:  topNCeiling,
		maxFetchSize: maxFetchSize,
	}
}

// Search runs a text search against the contract snapshot. For custom
// models the service cannot embed the query; with a local embedder
// configured the call degrades to a vector query, otherwise it fails
// before any network traffic.
func (s *Service) Search(
	ctx context.Context,
	contractID string, model domain.ModelSpec,
	query string, topN int, opts Options,
) ([]domain.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}
	topN, err := s.clampTopN(topN)
	if err != nil {
		return nil, err
	}
	level, err := normalizeLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	if !model.SupportsTextSearch {
		if s.embed == nil {
			return nil, fmt.Errorf(
				"%w: model %s is not text-capable and no local embedder is configured",
				domain.ErrUnsupportedOperation, model.Identifier)
		}
		return s.searchViaEmbedder(ctx, contractID, model, query, topN, level)
	}

	params := domain.SearchParams{
		ContractID: contractID,
		Query:      query,
		Model:      model.Identifier,
		Field:      opts.Field,
		TopN:       topN,
		Level:      level,
	}
	if opts.Rerank {
		rerank := true
		params.Rerank = &rerank
	}

	raw, err := s.idx.SearchRaw(ctx, params)
	if err != nil && opts.Rerank && rerankRejected(err) {
		// Re-ranking is an enhancement, not a correctness requirement:
		// when the service rejects it, retry plain.
		logger.FromContext(ctx).Debug("rerank unavailable, retrying without",
			zap.String("contract_id", contractID), zap.Error(err))
		params.Rerank = nil
		raw, err = s.idx.SearchRaw(ctx, params)
	}
	if err != nil {
		return nil, err
	}
	return normalizeResults(raw)
}

// rerankRejected reports whether a permanent rejection plausibly targets
// the rerank parameter. A rejection naming an unrelated cause (bad
// contract, bad field) would fail identically on a second attempt, so
// only ambiguous or rerank-specific messages trigger the fallback.
func rerankRejected(err error) bool {
	if !errors.Is(err, domain.ErrPermanentServer) {
		return false
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return strings.Contains(strings.ToLower(apiErr.Message), "rerank")
	}
	return true
}

// searchViaEmbedder embeds the query locally and routes through the
// vector query path.
func (s *Service) searchViaEmbedder(
	ctx context.Context,
	contractID string, model domain.ModelSpec,
	query string, topN, level int,
) ([]domain.SearchResult, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if err := domain.ValidateVector(model, emb.Embedding); err != nil {
		return nil, err
	}
	raw, err := s.idx.QueryRaw(ctx, domain.QueryParams{
		ContractID: contractID,
		Vector:     emb.Embedding,
		TopN:       topN,
		Level:      level,
	})
	if err != nil {
		return nil, err
	}
	return normalizeResults(raw)
}

// Query runs a raw vector query. Dimension validation happens before any
// network call when the model dimension is known.
func (s *Service) Query(
	ctx context.Context,
	contractID string, model domain.ModelSpec,
	vector []float32, topN int, opts Options,
) ([]domain.SearchResult, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidArgument)
	}
	if err := domain.ValidateVector(model, vector); err != nil {
		return nil, err
	}
	topN, err := s.clampTopN(topN)
	if err != nil {
		return nil, err
	}
	level, err := normalizeLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	raw, err := s.idx.QueryRaw(ctx, domain.QueryParams{
		ContractID: contractID,
		Vector:     vector,
		TopN:       topN,
		Level:      level,
	})
	if err != nil {
		return nil, err
	}
	return normalizeResults(raw)
}

// Fetch looks up records by id, chunking large id sets under the same
// batch bound as ingestion. Missing ids map to explicit not-found
// entries rather than failing the call.
func (s *Service) Fetch(
	ctx context.Context, contractID string, ids []string,
) (map[string]domain.FetchedRecord, error) {
	out := make(map[string]domain.FetchedRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	for start := 0; start < len(ids); start += s.maxFetchSize {
		end := start + s.maxFetchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		raw, err := s.idx.FetchRaw(ctx, contractID, chunk)
		if err != nil {
			return nil, err
		}
		records, err := normalizeFetch(raw, chunk)
		if err != nil {
			return nil, err
		}
		for id, rec := range records {
			out[id] = rec
		}
	}
	return out, nil
}

// clampTopN rejects non-positive values and clamps values above the
// server ceiling instead of rejecting them.
func (s *Service) clampTopN(topN int) (int, error) {
	if topN <= 0 {
		return 0, fmt.Errorf("%w: topN must be positive, got %d", domain.ErrInvalidArgument, topN)
	}
	if topN > s.topNCeiling {
		return s.topNCeiling, nil
	}
	return topN, nil
}

func normalizeLevel(level int) (int, error) {
	if level == 0 {
		return DefaultLevel, nil
	}
	if level < 0 || level > 4 {
		return 0, fmt.Errorf("%w: level must be between 0 and 4, got %d", domain.ErrInvalidArgument, level)
	}
	return level, nil
}
