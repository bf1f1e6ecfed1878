package lodestone

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
	openaiEmb "github.com/lodestone-ai/lodestone-go/internal/transport/openai"
)

// Embedder vectorizes text on the client side. Only needed to search
// custom (non-text-capable) knowledge bases by raw text; built-in
// models are embedded by the service itself.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// OpenAIEmbedderConfig configures the bundled OpenAI-compatible
// embedding provider.
type OpenAIEmbedderConfig struct {
	APIKey     string
	BaseURL    string // empty = api.openai.com
	Model      string
	Dimensions int
	Logger     *zap.Logger
}

// NewOpenAIEmbedder creates an Embedder backed by an OpenAI-compatible
// embeddings API.
func NewOpenAIEmbedder(cfg OpenAIEmbedderConfig) Embedder {
	inner := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Logger:     cfg.Logger,
	})
	return &domainEmbedderWrapper{inner: inner}
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// domainEmbedderWrapper exposes a domain.Embedder as the public interface.
type domainEmbedderWrapper struct {
	inner domain.Embedder
}

func (w *domainEmbedderWrapper) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	r, err := w.inner.Embed(ctx, text)
	if err != nil {
		return EmbeddingResult{}, err
	}
	return EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
