package domain

// SearchParams is a text search request bound to a contract snapshot.
type SearchParams struct {
	ContractID string
	Query      string
	Model      string
	Field      string
	TopN       int
	Level      int
	Rerank     *bool
}

// QueryParams is a raw vector query bound to a contract snapshot.
type QueryParams struct {
	ContractID string
	Vector     []float32
	TopN       int
	Level      int
}

// CreateParams describes a knowledge base to create. DimensionHint is
// required for custom embedding models, whose dimensionality the
// registry cannot know.
type CreateParams struct {
	Name          string
	Model         string
	Category      string
	Description   string
	DimensionHint int
}
