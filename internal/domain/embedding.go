package domain

import "context"

// Embedder vectorizes text on the client side. Optional: only needed to
// search custom (non-text-capable) knowledge bases by raw text.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
