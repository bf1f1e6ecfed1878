package rest

import "time"

// API paths. The knowledge root manages contracts, the index root serves
// the vector index itself.
const (
	knowledgeRoot = "/v1/knowledge/index"
	indexRoot     = "/v1/hnsw"
)

// CreateIndexRequest creates a knowledge base.
type CreateIndexRequest struct {
	Name        string `json:"name"`
	Embedding   string `json:"embedding"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// CreateIndexResponse carries the service-assigned contract id.
type CreateIndexResponse struct {
	ContractID string `json:"contract_id"`
}

// ContractInfo is one entry of the contract listing.
type ContractInfo struct {
	ContractID  string    `json:"contract_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Embedding   string    `json:"embedding"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListContractsResponse is the contract listing envelope.
type ListContractsResponse struct {
	Contracts []ContractInfo `json:"contracts"`
}

// ModelInfo is the embedding model metadata of a contract.
type ModelInfo struct {
	Embedding string `json:"embedding"`
}

// GetModelResponse carries a contract's model metadata.
type GetModelResponse struct {
	Model ModelInfo `json:"model"`
}

// EntryCountResponse carries the number of records in a contract.
type EntryCountResponse struct {
	EntryCount int `json:"entry_count"`
}

// InsertRecord is one record of an insert batch. Exactly one of Text or
// Vector is set; validation happens before the request is built.
type InsertRecord struct {
	Text     string         `json:"text,omitempty"`
	Vector   []float32      `json:"vector,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// InsertBatchRequest submits one batch of records.
type InsertBatchRequest struct {
	ContractID string         `json:"contract_id"`
	Records    []InsertRecord `json:"records"`
	BatchSize  int            `json:"batch_size"`
	// Model accompanies text inserts so the service knows how to embed.
	Model string `json:"model,omitempty"`
}

// InsertBatchResponse acknowledges one batch.
type InsertBatchResponse struct {
	Message string `json:"message"`
}

// SearchRequest is a text search against a text-capable contract.
type SearchRequest struct {
	ContractID string `json:"contract_id"`
	Query      string `json:"query"`
	TopN       int    `json:"top_n"`
	Model      string `json:"model"`
	Field      string `json:"field,omitempty"`
	Rerank     *bool  `json:"rerank,omitempty"`
	Level      int    `json:"level"`
}

// QueryRequest is a raw vector query.
type QueryRequest struct {
	ContractID string    `json:"contract_id"`
	Vector     []float32 `json:"vector"`
	TopN       int       `json:"top_n"`
	Level      int       `json:"level"`
}

// FetchRequest looks up records by id.
type FetchRequest struct {
	ContractID string   `json:"contract_id"`
	IDs        []string `json:"id"`
}
