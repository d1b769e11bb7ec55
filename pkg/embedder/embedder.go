// Package embedder provides text embedding clients for vector
// representations.
//
// This package defines the Client interface and an OpenAI-backed
// implementation. Implementations handle batching internally based on
// provider limits; token usage is surfaced for cost estimation in
// benchmarking and has no bearing on correctness.
package embedder

import (
	"context"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "text-embedding-3-small"

// DefaultBatchSize is the number of texts sent per provider request.
const DefaultBatchSize = 100

// Config holds embedder configuration.
type Config struct {
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
	BatchSize  int    `mapstructure:"batch_size"`
}

// Client is the embedding provider boundary.
type Client interface {
	// Embed generates embeddings for the given texts in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the number of dimensions in the embeddings.
	Dimensions() int

	// TokensUsed returns the cumulative prompt tokens consumed by this
	// client, for cost estimation only.
	TokensUsed() int64

	// Close cleans up any resources.
	Close() error
}
