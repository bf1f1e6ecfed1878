package ingest

import (
	"context"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

// BatchSubmitter ships one homogeneous batch of records to the service.
type BatchSubmitter interface {
	SubmitBatch(ctx context.Context, contractID, model string,
		kind domain.RecordKind, records []domain.Record) error
}
