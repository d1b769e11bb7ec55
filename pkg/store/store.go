// Package store defines the narrow repository boundary between the relato
// core and the underlying object/chunk storage engine.
//
// The core needs exactly four capabilities: get objects by id, list
// objects by platform/type filter, vector similarity search over chunks,
// and merging relation targets into an object. Each capability is a
// focused interface; Store composes them for callers that need all of
// them. Consumers should depend on the smallest interface that meets
// their needs.
package store

import (
	"context"
	"errors"

	"github.com/teamtrace/relato/pkg/types"
)

var (
	// ErrObjectNotFound is returned when an object id cannot be resolved.
	ErrObjectNotFound = errors.New("object not found")
	// ErrChunkNotFound is returned when a chunk id cannot be resolved.
	ErrChunkNotFound = errors.New("chunk not found")
)

// ObjectFilter constrains ListObjects results. Zero-valued fields are
// ignored.
type ObjectFilter struct {
	Platform   string
	ObjectType string
	Limit      int
}

// ObjectReader provides read access to canonical objects.
type ObjectReader interface {
	// GetObject retrieves a single object by id.
	GetObject(ctx context.Context, id string) (*types.CanonicalObject, error)

	// GetObjects retrieves multiple objects in one round trip. Ids that
	// cannot be resolved are omitted from the result, not an error.
	GetObjects(ctx context.Context, ids []string) ([]*types.CanonicalObject, error)

	// ListObjects retrieves objects matching the filter.
	ListObjects(ctx context.Context, filter ObjectFilter) ([]*types.CanonicalObject, error)
}

// ObjectWriter provides write access for ingestion and consolidation.
type ObjectWriter interface {
	// UpsertObject creates or replaces an object.
	UpsertObject(ctx context.Context, obj *types.CanonicalObject) error

	// UpsertChunk creates or replaces a chunk.
	UpsertChunk(ctx context.Context, chunk *types.Chunk) error
}

// ChunkReader provides read and vector-search access to chunks.
type ChunkReader interface {
	// GetChunksByObject retrieves all chunks belonging to an object,
	// ordered by chunk index.
	GetChunksByObject(ctx context.Context, objectID string) ([]*types.Chunk, error)

	// SearchChunks performs top-K vector similarity search over chunk
	// embeddings, filtered by a minimum similarity score.
	SearchChunks(ctx context.Context, vector []float32, topK int, minScore float64) ([]types.ScoredChunk, error)
}

// RelationWriter merges relation targets into an object's relations field.
// Implementations must use set-union semantics keyed by target id and
// overwrite (not accumulate) the match-confidence scalar.
type RelationWriter interface {
	MergeRelations(ctx context.Context, objectID string, relationName string, targetIDs []string, confidence float64) error
}

// Store composes all storage capabilities.
type Store interface {
	ObjectReader
	ObjectWriter
	ChunkReader
	RelationWriter

	// Close releases all resources held by the store.
	Close() error
}

// Compile-time checks that every backend implements the full Store.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*Neo4jStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*BadgerStore)(nil)
)
