package embedder

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	openai "github.com/sashabaranov/go-openai"
)

// modelDimensions maps known OpenAI embedding models to their output size.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIEmbedder implements the Client interface using the OpenAI
// embeddings API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	batchSize  int
	tokensUsed atomic.Int64
}

// NewOpenAIEmbedder creates an OpenAI embedding client. Empty config
// fields fall back to defaults; a BaseURL may point at any
// OpenAI-compatible endpoint.
func NewOpenAIEmbedder(apiKey string, config Config) *OpenAIEmbedder {
	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	dimensions := config.Dimensions
	if dimensions == 0 {
		if d, ok := modelDimensions[model]; ok {
			dimensions = d
		} else {
			dimensions = modelDimensions[DefaultModel]
		}
	}

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		dimensions: dimensions,
		batchSize:  batchSize,
	}
}

// Embed generates embeddings for the given texts, batching requests to
// stay within provider limits. Newlines are flattened before embedding.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := make([]string, end-start)
		for i, text := range texts[start:end] {
			batch[i] = strings.ReplaceAll(text, "\n", " ")
		}

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("embedding response size mismatch: sent %d, got %d", len(batch), len(resp.Data))
		}

		e.tokensUsed.Add(int64(resp.Usage.PromptTokens))
		for _, item := range resp.Data {
			out = append(out, item.Embedding)
		}
	}

	return out, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *OpenAIEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// TokensUsed returns the cumulative prompt tokens consumed.
func (e *OpenAIEmbedder) TokensUsed() int64 {
	return e.tokensUsed.Load()
}

// Close implements Client; the HTTP client needs no explicit teardown.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
