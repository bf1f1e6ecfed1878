// Package openai provides a client-side embedding provider for custom
// knowledge bases. The Lodestone service cannot embed query strings for
// custom models, so the vector has to be produced locally.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

// Embedder vectorizes text through an OpenAI-compatible embeddings API.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		logger:     logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return domain.EmbeddingResult{}, parseAPIError(err)
	}
	if len(resp.Data) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: empty embedding response", domain.ErrTransport)
	}

	e.logger.Debug("embedded query",
		zap.String("model", string(e.model)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// parseAPIError extracts a human-readable error from the provider response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		kind := domain.ErrTransientServer
		if reqErr.HTTPStatusCode == 429 {
			kind = domain.ErrRateLimited
		} else if reqErr.HTTPStatusCode >= 400 && reqErr.HTTPStatusCode < 500 {
			kind = domain.ErrPermanentServer
		}
		return fmt.Errorf("embedding provider %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), kind)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := domain.ErrTransientServer
		if apiErr.HTTPStatusCode == 429 {
			kind = domain.ErrRateLimited
		} else if apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 {
			kind = domain.ErrPermanentServer
		}
		return fmt.Errorf("embedding provider %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, kind)
	}

	return fmt.Errorf("%w: %v", domain.ErrTransport, err)
}
