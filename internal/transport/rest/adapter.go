package rest

import (
	"context"
	"encoding/json"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

// Adapter methods exposing the transport in domain vocabulary. The
// usecase layers consume these through their own narrow interfaces.

// SubmitBatch submits one homogeneous batch of records. Text batches go
// to the text-insert endpoint so the service embeds them; vector batches
// go straight to the index.
func (c *Client) SubmitBatch(
	ctx context.Context, contractID, model string,
	kind domain.RecordKind, records []domain.Record,
) error {
	req := InsertBatchRequest{
		ContractID: contractID,
		Records:    make([]InsertRecord, len(records)),
		BatchSize:  len(records),
	}
	for i, r := range records {
		req.Records[i] = InsertRecord{
			Text:     r.Text(),
			Vector:   r.Vector(),
			Metadata: r.Metadata(),
		}
	}

	if kind == domain.KindText {
		req.Model = model
		return c.InsertTexts(ctx, req)
	}
	return c.InsertVectors(ctx, req)
}

// SearchRaw runs a text search and returns the raw result entries.
func (c *Client) SearchRaw(ctx context.Context, p domain.SearchParams) ([]json.RawMessage, error) {
	return c.Search(ctx, SearchRequest{
		ContractID: p.ContractID,
		Query:      p.Query,
		TopN:       p.TopN,
		Model:      p.Model,
		Field:      p.Field,
		Rerank:     p.Rerank,
		Level:      p.Level,
	})
}

// QueryRaw runs a vector query and returns the raw result entries.
func (c *Client) QueryRaw(ctx context.Context, p domain.QueryParams) ([]json.RawMessage, error) {
	return c.Query(ctx, QueryRequest{
		ContractID: p.ContractID,
		Vector:     p.Vector,
		TopN:       p.TopN,
		Level:      p.Level,
	})
}

// FetchRaw looks up records by id and returns the raw response body.
func (c *Client) FetchRaw(ctx context.Context, contractID string, ids []string) (json.RawMessage, error) {
	return c.Fetch(ctx, FetchRequest{ContractID: contractID, IDs: ids})
}

// CreateContract creates a knowledge base and returns its contract id.
func (c *Client) CreateContract(ctx context.Context, p domain.CreateParams) (string, error) {
	resp, err := c.CreateIndex(ctx, CreateIndexRequest{
		Name:        p.Name,
		Embedding:   p.Model,
		Category:    p.Category,
		Description: p.Description,
	})
	if err != nil {
		return "", err
	}
	return resp.ContractID, nil
}

// Contracts lists the caller's knowledge bases in domain form.
func (c *Client) Contracts(ctx context.Context) ([]domain.KnowledgeBase, error) {
	infos, err := c.ListContracts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.KnowledgeBase, len(infos))
	for i, info := range infos {
		out[i] = domain.KnowledgeBase{
			ID:             info.ContractID,
			Name:           info.Name,
			Category:       info.Category,
			Description:    info.Description,
			EmbeddingModel: info.Embedding,
			CreatedAt:      info.CreatedAt,
		}
	}
	return out, nil
}
