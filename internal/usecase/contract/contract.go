package contract

import (
	"context"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

// Registry is the remote contract store.
type Registry interface {
	CreateContract(ctx context.Context, p domain.CreateParams) (string, error)
	Contracts(ctx context.Context) ([]domain.KnowledgeBase, error)
	GetModel(ctx context.Context, contractID string) (string, error)
	EntryCount(ctx context.Context, contractID string) (int, error)
}
