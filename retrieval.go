package relato

import (
	"context"

	"github.com/teamtrace/relato/pkg/consolidate"
	"github.com/teamtrace/relato/pkg/inference"
	"github.com/teamtrace/relato/pkg/retrieval"
	"github.com/teamtrace/relato/pkg/store"
	"github.com/teamtrace/relato/pkg/types"
)

// Retrieve answers a query with chunks, parent objects and relations
// inferred among them.
func (c *Client) Retrieve(ctx context.Context, query string) (*retrieval.Result, error) {
	return c.retriever.Retrieve(ctx, query)
}

// RetrieveWithExpansion runs Retrieve and pulls in objects referenced by
// relations but not directly matched.
func (c *Client) RetrieveWithExpansion(ctx context.Context, query string) (*retrieval.Result, error) {
	return c.retriever.RetrieveWithExpansion(ctx, query)
}

// RetrieveWithReranking runs Retrieve and reorders results by a
// recency-boosted score using the client's rerank configuration.
func (c *Client) RetrieveWithReranking(ctx context.Context, query string) (*retrieval.Result, error) {
	return c.retriever.RetrieveWithReranking(ctx, query, c.config.Rerank)
}

// GetRelatedObjects walks the explicit relation graph outward from an
// object up to maxDepth hops.
func (c *Client) GetRelatedObjects(ctx context.Context, objectID string, maxDepth int) (*retrieval.Neighborhood, error) {
	return c.retriever.GetRelatedObjects(ctx, objectID, maxDepth)
}

// GetObject retrieves a single object by id.
func (c *Client) GetObject(ctx context.Context, id string) (*types.CanonicalObject, error) {
	return c.store.GetObject(ctx, id)
}

// InferRelations produces typed, confidence-scored relations among the
// given objects.
func (c *Client) InferRelations(objects []*types.CanonicalObject) []types.Relation {
	return c.inferrer.InferAll(objects)
}

// InferRelationsWithEmbeddings additionally scores semantic similarity
// from per-object chunk embeddings.
func (c *Client) InferRelationsWithEmbeddings(objects []*types.CanonicalObject, embeddingsByObject map[string][][]float32) []types.Relation {
	return c.inferrer.InferAllWithEmbeddings(objects, embeddingsByObject)
}

// PersistMatches writes inferred relations back into the objects'
// relations fields.
func (c *Client) PersistMatches(ctx context.Context, relations []types.Relation) inference.PersistStats {
	return inference.PersistMatches(ctx, c.store, relations, c.logger)
}

// Consolidate removes duplicate objects by content hash, keeping the
// most recently updated copy.
func (c *Client) Consolidate(ctx context.Context, filter store.ObjectFilter) (consolidate.Result, error) {
	return consolidate.ConsolidateStore(ctx, c.store, filter, c.logger)
}

// Close closes the underlying store and embedder.
func (c *Client) Close() error {
	if err := c.embedder.Close(); err != nil {
		return err
	}
	return c.store.Close()
}
