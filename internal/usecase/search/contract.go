package search

import (
	"context"
	"encoding/json"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

// IndexReader issues search, query, and fetch requests against the
// remote index. Results come back raw: the service has returned several
// shapes over time and normalization is this package's job.
type IndexReader interface {
	SearchRaw(ctx context.Context, p domain.SearchParams) ([]json.RawMessage, error)
	QueryRaw(ctx context.Context, p domain.QueryParams) ([]json.RawMessage, error)
	FetchRaw(ctx context.Context, contractID string, ids []string) (json.RawMessage, error)
}
