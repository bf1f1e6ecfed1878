// Package rest is the transport adapter for the Lodestone HTTP API:
// auth headers, JSON bodies, the {"data": ...} response envelope, status
// mapping into the error taxonomy, and per-call retries.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
	"github.com/lodestone-ai/lodestone-go/internal/metrics"
	"github.com/lodestone-ai/lodestone-go/internal/retry"
)

// Client talks to the Lodestone API over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	timeout time.Duration
	policy  retry.Policy
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Config holds transport settings.
type Config struct {
	Host           string
	APIKey         string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Policy         retry.Policy
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
}

// NewClient creates a transport client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	// Hosts without a scheme get https; an explicit scheme passes
	// through for local deployments.
	baseURL := cfg.Host
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		http:    httpClient,
		timeout: cfg.RequestTimeout,
		policy:  cfg.Policy,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// envelope is the service's uniform response wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// do runs one API call with the shared retry policy and decodes the
// response envelope into out (out may be nil for ack-only calls).
func (c *Client) do(ctx context.Context, op, method, path string, payload, out any) error {
	start := time.Now()

	err := c.policy.Do(ctx, func() error {
		return c.doOnce(ctx, method, path, payload, out)
	}, func(reason string, delay time.Duration) {
		c.metrics.ObserveRetry(op, reason)
		c.logger.Warn("retrying request",
			zap.String("operation", op),
			zap.String("reason", reason),
			zap.Duration("delay", delay),
		)
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.ObserveRequest(op, status, time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload, out any) error {
	// Per-call timeout: a slow batch must be distinguishable from a
	// wedged connection, so the deadline applies to each attempt.
	attemptCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", domain.ErrValidation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		// The caller giving up is not a transport fault.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attemptCtx.Err() != nil {
			return fmt.Errorf("%w: request timed out after %s", domain.ErrTransientServer, c.timeout)
		}
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, data, resp.Header)
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: malformed response envelope: %v", domain.ErrTransport, err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode response data: %v", domain.ErrTransport, err)
	}
	return nil
}

// CreateIndex creates a knowledge base and returns its contract id.
func (c *Client) CreateIndex(ctx context.Context, req CreateIndexRequest) (CreateIndexResponse, error) {
	var out CreateIndexResponse
	if err := c.do(ctx, "create_index", http.MethodPost, knowledgeRoot+"/create", req, &out); err != nil {
		return CreateIndexResponse{}, err
	}
	return out, nil
}

// ListContracts returns the caller's knowledge bases.
func (c *Client) ListContracts(ctx context.Context) ([]ContractInfo, error) {
	var out ListContractsResponse
	if err := c.do(ctx, "list_contracts", http.MethodGet, knowledgeRoot+"/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Contracts, nil
}

// GetModel returns the embedding model identifier of a contract.
func (c *Client) GetModel(ctx context.Context, contractID string) (string, error) {
	q := url.Values{"contract_id": {contractID}}
	var out GetModelResponse
	if err := c.do(ctx, "get_model", http.MethodGet, knowledgeRoot+"/get_model?"+q.Encode(), nil, &out); err != nil {
		return "", err
	}
	if out.Model.Embedding == "" {
		return "", fmt.Errorf("get_model: %w: response carries no model", domain.ErrTransport)
	}
	return out.Model.Embedding, nil
}

// EntryCount returns the number of records indexed under a contract.
func (c *Client) EntryCount(ctx context.Context, contractID string) (int, error) {
	q := url.Values{"contract_id": {contractID}}
	var out EntryCountResponse
	if err := c.do(ctx, "entry_count", http.MethodGet, knowledgeRoot+"/entry_count?"+q.Encode(), nil, &out); err != nil {
		return 0, err
	}
	return out.EntryCount, nil
}

// InsertVectors submits one batch of vector records.
func (c *Client) InsertVectors(ctx context.Context, req InsertBatchRequest) error {
	var out InsertBatchResponse
	return c.do(ctx, "insert_batch", http.MethodPost, indexRoot+"/insert_batch", req, &out)
}

// InsertTexts submits one batch of text records for server-side embedding.
func (c *Client) InsertTexts(ctx context.Context, req InsertBatchRequest) error {
	var out InsertBatchResponse
	return c.do(ctx, "insert_text", http.MethodPost, indexRoot+"/insert_text", req, &out)
}

// Search runs a text search. Results are returned raw; shapes vary
// across service versions and are normalized by the caller.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]json.RawMessage, error) {
	var out []json.RawMessage
	if err := c.do(ctx, "search", http.MethodPost, indexRoot+"/search", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Query runs a raw vector query. Results are returned raw, like Search.
func (c *Client) Query(ctx context.Context, req QueryRequest) ([]json.RawMessage, error) {
	var out []json.RawMessage
	if err := c.do(ctx, "query", http.MethodPost, indexRoot+"/query", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Fetch looks up records by id. The response shape varies (aligned
// arrays vs a mapping) and is normalized by the caller.
func (c *Client) Fetch(ctx context.Context, req FetchRequest) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, "fetch", http.MethodPost, indexRoot+"/fetch", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}
