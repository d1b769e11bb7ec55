package relato

import (
	"context"

	"github.com/teamtrace/relato/pkg/consolidate"
	"github.com/teamtrace/relato/pkg/inference"
	"github.com/teamtrace/relato/pkg/retrieval"
	"github.com/teamtrace/relato/pkg/store"
	"github.com/teamtrace/relato/pkg/types"
)

// This file defines focused interfaces that follow the Interface
// Segregation Principle. The main Relato interface is composed from these
// smaller interfaces. Consumers should depend on the smallest interface
// that meets their needs.

// Querier provides read-only retrieval operations.
// Use this interface when you only need to answer queries.
type Querier interface {
	// Retrieve answers a query with chunks, parent objects and relations
	// inferred among them.
	Retrieve(ctx context.Context, query string) (*retrieval.Result, error)

	// RetrieveWithExpansion runs Retrieve and pulls in objects referenced
	// by relations but not directly matched.
	RetrieveWithExpansion(ctx context.Context, query string) (*retrieval.Result, error)

	// RetrieveWithReranking runs Retrieve and reorders results by a
	// recency-boosted score.
	RetrieveWithReranking(ctx context.Context, query string) (*retrieval.Result, error)

	// GetRelatedObjects walks the explicit relation graph outward from an
	// object up to maxDepth hops.
	GetRelatedObjects(ctx context.Context, objectID string, maxDepth int) (*retrieval.Neighborhood, error)

	// GetObject retrieves a single object by id.
	GetObject(ctx context.Context, id string) (*types.CanonicalObject, error)
}

// RelationInferrer provides relation inference over object sets.
// Use this interface to score relations without running retrieval.
type RelationInferrer interface {
	// InferRelations produces typed, confidence-scored relations among
	// the given objects using explicit extraction and keyword similarity.
	InferRelations(objects []*types.CanonicalObject) []types.Relation

	// InferRelationsWithEmbeddings additionally scores semantic
	// similarity from per-object chunk embeddings.
	InferRelationsWithEmbeddings(objects []*types.CanonicalObject, embeddingsByObject map[string][][]float32) []types.Relation

	// PersistMatches writes inferred relations back into the objects'
	// relations fields. Idempotent per relation.
	PersistMatches(ctx context.Context, relations []types.Relation) inference.PersistStats
}

// Consolidator provides duplicate-object merging.
type Consolidator interface {
	// Consolidate removes duplicate objects by content hash, keeping the
	// most recently updated copy.
	Consolidate(ctx context.Context, filter store.ObjectFilter) (consolidate.Result, error)
}

// Admin provides lifecycle operations.
type Admin interface {
	// Close closes all connections and cleans up resources.
	Close() error
}

// Relato is the main interface for the relation-inference and retrieval
// core.
type Relato interface {
	Querier
	RelationInferrer
	Consolidator
	Admin
}

// Ensure Client implements all focused interfaces.
var _ Relato = (*Client)(nil)
