package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamtrace/relato/pkg/embedder"
	"github.com/teamtrace/relato/pkg/inference"
	"github.com/teamtrace/relato/pkg/store"
	"github.com/teamtrace/relato/pkg/types"
)

// Config holds retrieval configuration.
type Config struct {
	// SimilarityThreshold is the minimum chunk similarity for vector
	// search hits.
	SimilarityThreshold float64 `json:"similarity_threshold" mapstructure:"similarity_threshold"`

	// ChunkLimit is the maximum number of chunks returned.
	ChunkLimit int `json:"chunk_limit" mapstructure:"chunk_limit"`

	// IncludeRelations runs relation inference over the resolved objects.
	IncludeRelations bool `json:"include_relations" mapstructure:"include_relations"`

	// RelationDepth is the hop count for graph expansion traversals.
	RelationDepth int `json:"relation_depth" mapstructure:"relation_depth"`
}

// DefaultConfig returns the default retrieval configuration.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.3,
		ChunkLimit:          20,
		IncludeRelations:    true,
		RelationDepth:       1,
	}
}

// Stats carries per-request counts and timings. Timings are observational
// and not part of correctness.
type Stats struct {
	ChunkCount     int           `json:"chunk_count"`
	ObjectCount    int           `json:"object_count"`
	RelationCount  int           `json:"relation_count"`
	ExpandedCount  int           `json:"expanded_count,omitempty"`
	EmbedDuration  time.Duration `json:"embed_duration"`
	SearchDuration time.Duration `json:"search_duration"`
	TotalDuration  time.Duration `json:"total_duration"`
}

// Result is the unified retrieval response.
type Result struct {
	Query     string                   `json:"query"`
	Chunks    []types.ScoredChunk      `json:"chunks"`
	Objects   []*types.CanonicalObject `json:"objects"`
	Relations []types.Relation         `json:"relations"`
	Stats     Stats                    `json:"stats"`
}

// Retriever orchestrates the retrieval pipeline. It holds no per-request
// state and is safe for concurrent use.
type Retriever struct {
	store    store.Store
	embedder embedder.Client
	inferrer *inference.Inferrer
	config   Config
	logger   *slog.Logger
}

// NewRetriever creates a Retriever. A nil inferrer gets default inference
// configuration; a nil logger falls back to slog.Default().
func NewRetriever(st store.Store, emb embedder.Client, inf *inference.Inferrer, config Config, logger *slog.Logger) *Retriever {
	if inf == nil {
		inf = inference.NewInferrer(inference.DefaultConfig(), nil, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		store:    st,
		embedder: emb,
		inferrer: inf,
		config:   config,
		logger:   logger,
	}
}

// Retrieve answers a query: embed, vector-search chunks, resolve parent
// objects, and (optionally) infer relations among them.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*Result, error) {
	started := time.Now()

	embedStart := time.Now()
	queryVector, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	embedDuration := time.Since(embedStart)

	searchStart := time.Now()
	chunks, err := r.store.SearchChunks(ctx, queryVector, r.config.ChunkLimit, r.config.SimilarityThreshold)
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}
	searchDuration := time.Since(searchStart)

	objects, err := r.resolveParents(ctx, chunks)
	if err != nil {
		return nil, err
	}

	var relations []types.Relation
	if r.config.IncludeRelations {
		relations = r.inferrer.InferAll(objects)
	}

	result := &Result{
		Query:     query,
		Chunks:    chunks,
		Objects:   objects,
		Relations: relations,
		Stats: Stats{
			ChunkCount:     len(chunks),
			ObjectCount:    len(objects),
			RelationCount:  len(relations),
			EmbedDuration:  embedDuration,
			SearchDuration: searchDuration,
			TotalDuration:  time.Since(started),
		},
	}

	r.logger.Debug("retrieve completed",
		"query_len", len(query),
		"chunks", result.Stats.ChunkCount,
		"objects", result.Stats.ObjectCount,
		"relations", result.Stats.RelationCount,
		"total", result.Stats.TotalDuration)

	return result, nil
}

// RetrieveWithExpansion runs Retrieve and then pulls in objects that are
// referenced by the returned relations but were not directly matched.
// Relations are re-inferred over the expanded set so edges among newly
// added objects are also surfaced. The returned relation set is closed
// over the returned objects except for ids that cannot be resolved, which
// are dropped silently.
func (r *Retriever) RetrieveWithExpansion(ctx context.Context, query string) (*Result, error) {
	started := time.Now()

	result, err := r.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(result.Objects))
	for _, obj := range result.Objects {
		present[obj.ID] = true
	}

	var missing []string
	seen := make(map[string]bool)
	for _, rel := range result.Relations {
		for _, id := range []string{rel.FromID, rel.ToID} {
			if !present[id] && !seen[id] {
				missing = append(missing, id)
				seen[id] = true
			}
		}
	}

	if len(missing) > 0 {
		// Unresolvable ids (deleted or out-of-scope objects) are expected
		// and simply omitted by the store.
		related, err := r.store.GetObjects(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("expansion fetch failed: %w", err)
		}
		for _, obj := range related {
			result.Objects = append(result.Objects, obj)
			present[obj.ID] = true
		}
		result.Stats.ExpandedCount = len(related)

		result.Relations = r.inferrer.InferAll(result.Objects)
	}

	// Drop relations still referencing objects we could not resolve.
	closed := result.Relations[:0]
	for _, rel := range result.Relations {
		if isActorEdge(rel.Type) || (present[rel.FromID] && present[rel.ToID]) {
			closed = append(closed, rel)
		}
	}
	result.Relations = closed

	result.Stats.ObjectCount = len(result.Objects)
	result.Stats.RelationCount = len(result.Relations)
	result.Stats.TotalDuration = time.Since(started)
	return result, nil
}

// resolveParents fetches the distinct parent objects of the given chunks,
// preserving chunk ranking order.
func (r *Retriever) resolveParents(ctx context.Context, chunks []types.ScoredChunk) ([]*types.CanonicalObject, error) {
	var ids []string
	seen := make(map[string]bool)
	for _, sc := range chunks {
		id := sc.Chunk.ParentObjectID
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	objects, err := r.store.GetObjects(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("object resolution failed: %w", err)
	}
	return objects, nil
}

// isActorEdge reports whether a relation type targets an actor identity
// rather than a stored object; such edges never resolve to objects and
// are kept as-is.
func isActorEdge(t types.RelationType) bool {
	switch t {
	case types.RelationCreatedBy, types.RelationUpdatedBy, types.RelationAssignee, types.RelationParticipatedIn:
		return true
	}
	return false
}
