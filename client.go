package lodestone

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lodestone-ai/lodestone-go/internal/config"
	"github.com/lodestone-ai/lodestone-go/internal/domain"
	"github.com/lodestone-ai/lodestone-go/internal/logger"
	"github.com/lodestone-ai/lodestone-go/internal/metrics"
	"github.com/lodestone-ai/lodestone-go/internal/retry"
	"github.com/lodestone-ai/lodestone-go/internal/transport/rest"
	contractuc "github.com/lodestone-ai/lodestone-go/internal/usecase/contract"
	ingestuc "github.com/lodestone-ai/lodestone-go/internal/usecase/ingest"
	searchuc "github.com/lodestone-ai/lodestone-go/internal/usecase/search"
)

// Client is the lodestone SDK entry point.
type Client struct {
	cfg    config.Config
	logger *zap.Logger

	contractSvc *contractuc.Service
	ingestSvc   *ingestuc.Service
	searchSvc   *searchuc.Service

	// Active session: mutable shared state. Sessions themselves are
	// immutable snapshots, so replacing the active one never affects
	// operations already bound to a prior contract.
	mu     sync.RWMutex
	active *Session
}

// New creates a lodestone Client.
func New(opts ...Option) (*Client, error) {
	cc := &clientConfig{cfg: config.Default()}
	for _, o := range opts {
		o.apply(cc)
	}
	if cc.configFile != "" {
		fileCfg, err := config.Load(cc.configFile)
		if err != nil {
			return nil, err
		}
		// Explicit options win over the file.
		cc.cfg = fileCfg
		for _, o := range opts {
			o.apply(cc)
		}
	}
	if err := cc.cfg.Validate(); err != nil {
		return nil, err
	}

	log := cc.logger
	if log == nil && cc.cfg.Logging.Level != "" {
		var err error
		log, err = logger.NewLogger(cc.cfg.Logging.Env, cc.cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
		}
	}
	if log == nil {
		log = zap.NewNop()
	}

	var m *metrics.Metrics
	if cc.metricsReg != nil {
		var err error
		m, err = metrics.New(cc.metricsReg)
		if err != nil {
			return nil, err
		}
	}

	api := rest.NewClient(rest.Config{
		Host:           cc.cfg.Host,
		APIKey:         cc.cfg.APIKey,
		HTTPClient:     cc.httpClient,
		RequestTimeout: cc.cfg.Retry.RequestTimeout,
		Policy: retry.Policy{
			MaxRetries:  cc.cfg.Retry.MaxRetries,
			BackoffBase: cc.cfg.Retry.BackoffBase,
			BackoffCap:  cc.cfg.Retry.BackoffCap,
		},
		Logger:  log,
		Metrics: m,
	})

	var emb domain.Embedder
	if cc.embedder != nil {
		emb = &embedderAdapter{inner: cc.embedder}
	}

	return &Client{
		cfg:         cc.cfg,
		logger:      log,
		contractSvc: contractuc.New(api),
		ingestSvc: ingestuc.New(api, m, ingestuc.Options{
			MaxBatchSize:  cc.cfg.Ingest.MaxBatchSize,
			MaxBatchBytes: cc.cfg.Ingest.MaxBatchBytes,
			Concurrency:   cc.cfg.Ingest.MaxConcurrency,
		}),
		searchSvc: searchuc.New(api, emb, config.ServerTopNCeiling, cc.cfg.Ingest.MaxBatchSize),
	}, nil
}

// Create registers a new knowledge base and returns a session bound to
// it. The new contract becomes the client's active session.
func (c *Client) Create(ctx context.Context, p CreateParams) (*Session, error) {
	ctx = logger.ContextWithLogger(ctx, c.logger)

	kb, spec, err := c.contractSvc.Create(ctx, domain.CreateParams{
		Name:          p.Name,
		Model:         p.EmbeddingModel,
		Category:      p.Category,
		Description:   p.Description,
		DimensionHint: p.DimensionHint,
	})
	if err != nil {
		return nil, err
	}

	session := c.newSession(kb.ID, spec)
	c.setActive(session)
	c.logger.Info("created knowledge base",
		zap.String("contract_id", kb.ID),
		zap.String("model", spec.Identifier),
	)
	return session, nil
}

// List returns the caller's knowledge bases, most recent first.
func (c *Client) List(ctx context.Context) ([]KnowledgeBase, error) {
	ctx = logger.ContextWithLogger(ctx, c.logger)

	kbs, err := c.contractSvc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]KnowledgeBase, len(kbs))
	for i, kb := range kbs {
		out[i] = fromDomainKB(kb)
	}
	return out, nil
}

// Select binds a session to an existing contract, re-resolving its
// embedding model from the server's record, and makes it the active
// session. Fails with ErrNotFound when the service knows no such
// contract.
func (c *Client) Select(ctx context.Context, contractID string) (*Session, error) {
	ctx = logger.ContextWithLogger(ctx, c.logger)

	spec, err := c.contractSvc.Select(ctx, contractID)
	if err != nil {
		return nil, err
	}
	session := c.newSession(contractID, spec)
	c.setActive(session)
	return session, nil
}

// Active returns the current active session, or an error when none has
// been created or selected yet. Concurrent Select replaces the active
// session; sessions already in hand keep their snapshot.
func (c *Client) Active() (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return nil, fmt.Errorf("%w: no active contract, call Create or Select first", domain.ErrInvalidArgument)
	}
	return c.active, nil
}

// CreateParams describes a knowledge base to create.
type CreateParams struct {
	Name           string
	EmbeddingModel string
	Category       string
	Description    string
	// DimensionHint is required for custom embedding models; built-in
	// models carry their own dimensionality.
	DimensionHint int
}

func (c *Client) newSession(contractID string, spec domain.ModelSpec) *Session {
	return &Session{
		contractID: contractID,
		model:      spec,
		client:     c,
	}
}

func (c *Client) setActive(s *Session) {
	c.mu.Lock()
	c.active = s
	c.mu.Unlock()
}
