package relato

import (
	"log/slog"

	"github.com/teamtrace/relato/pkg/embedder"
	"github.com/teamtrace/relato/pkg/inference"
	"github.com/teamtrace/relato/pkg/retrieval"
	"github.com/teamtrace/relato/pkg/store"
)

// Config holds configuration for the relato client.
type Config struct {
	// Inference controls relation inference thresholds and weights.
	Inference inference.Config

	// Retrieval controls chunk search and graph expansion.
	Retrieval retrieval.Config

	// Rerank controls recency-based reordering of retrieval results.
	Rerank retrieval.RerankConfig
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		Inference: inference.DefaultConfig(),
		Retrieval: retrieval.DefaultConfig(),
		Rerank:    retrieval.DefaultRerankConfig(),
	}
}

// Client is the main implementation of the Relato interface.
type Client struct {
	store     store.Store
	embedder  embedder.Client
	inferrer  *inference.Inferrer
	retriever *retrieval.Retriever
	config    *Config
	logger    *slog.Logger
}

// NewClient creates a relato client over the given store and embedder.
// A nil config gets defaults; a nil logger falls back to slog.Default().
func NewClient(st store.Store, emb embedder.Client, config *Config, logger *slog.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	inferrer := inference.NewInferrer(config.Inference, nil, logger)
	retriever := retrieval.NewRetriever(st, emb, inferrer, config.Retrieval, logger)

	return &Client{
		store:     st,
		embedder:  emb,
		inferrer:  inferrer,
		retriever: retriever,
		config:    config,
		logger:    logger,
	}, nil
}

// GetStore returns the underlying store.
func (c *Client) GetStore() store.Store {
	return c.store
}

// GetEmbedder returns the embedder client.
func (c *Client) GetEmbedder() embedder.Client {
	return c.embedder
}

// GetInferrer returns the relation inferrer.
func (c *Client) GetInferrer() *inference.Inferrer {
	return c.inferrer
}
