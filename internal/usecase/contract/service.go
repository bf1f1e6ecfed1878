// Package contract manages knowledge-base handles: creation, listing,
// and selection against the server's authoritative metadata.
package contract

import (
	"context"
	"fmt"
	"sort"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

// Service manages contract lifecycle operations.
type Service struct {
	reg Registry
}

// New creates a contract service.
func New(reg Registry) *Service {
	return &Service{reg: reg}
}

// Create registers a new knowledge base. Custom embedding models need an
// explicit dimension hint: without one the registry could never validate
// a vector locally.
func (s *Service) Create(ctx context.Context, p domain.CreateParams) (domain.KnowledgeBase, domain.ModelSpec, error) {
	if p.Name == "" {
		return domain.KnowledgeBase{}, domain.ModelSpec{}, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidArgument)
	}
	if p.Model == "" {
		return domain.KnowledgeBase{}, domain.ModelSpec{}, fmt.Errorf("%w: embedding model must not be empty", domain.ErrInvalidArgument)
	}

	spec := domain.ResolveModel(p.Model)
	if spec.Custom {
		if p.DimensionHint <= 0 {
			return domain.KnowledgeBase{}, domain.ModelSpec{}, fmt.Errorf(
				"%w: custom model %q requires a dimension hint", domain.ErrInvalidArgument, p.Model)
		}
		spec.Dimension = p.DimensionHint
	}

	id, err := s.reg.CreateContract(ctx, p)
	if err != nil {
		return domain.KnowledgeBase{}, domain.ModelSpec{}, fmt.Errorf("create contract: %w", err)
	}

	kb := domain.KnowledgeBase{
		ID:             id,
		Name:           p.Name,
		Category:       p.Category,
		Description:    p.Description,
		EmbeddingModel: p.Model,
	}
	return kb, spec, nil
}

// List returns the caller's knowledge bases, most recent first.
func (s *Service) List(ctx context.Context) ([]domain.KnowledgeBase, error) {
	kbs, err := s.reg.Contracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	sort.SliceStable(kbs, func(i, j int) bool {
		return kbs[i].CreatedAt.After(kbs[j].CreatedAt)
	})
	return kbs, nil
}

// Select resolves a contract's embedding model from the server's
// authoritative record. The round trip keeps the local model spec
// consistent with what the service will actually enforce.
func (s *Service) Select(ctx context.Context, contractID string) (domain.ModelSpec, error) {
	if contractID == "" {
		return domain.ModelSpec{}, fmt.Errorf("%w: contract id must not be empty", domain.ErrInvalidArgument)
	}
	modelID, err := s.reg.GetModel(ctx, contractID)
	if err != nil {
		return domain.ModelSpec{}, fmt.Errorf("select contract %s: %w", contractID, err)
	}
	return domain.ResolveModel(modelID), nil
}

// EntryCount returns the number of records indexed under a contract.
func (s *Service) EntryCount(ctx context.Context, contractID string) (int, error) {
	n, err := s.reg.EntryCount(ctx, contractID)
	if err != nil {
		return 0, fmt.Errorf("entry count: %w", err)
	}
	return n, nil
}
