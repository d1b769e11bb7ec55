package store

import (
	"context"
	"sort"
	"sync"

	"github.com/teamtrace/relato/pkg/types"
	"github.com/teamtrace/relato/pkg/vector"
)

// MemoryStore is an in-memory Store used by tests, examples and small
// local datasets. Vector search is a brute-force cosine scan.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*types.CanonicalObject
	chunks  map[string]*types.Chunk
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]*types.CanonicalObject),
		chunks:  make(map[string]*types.Chunk),
	}
}

// GetObject retrieves a single object by id.
func (s *MemoryStore) GetObject(ctx context.Context, id string) (*types.CanonicalObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return obj, nil
}

// GetObjects retrieves multiple objects; unknown ids are omitted.
func (s *MemoryStore) GetObjects(ctx context.Context, ids []string) ([]*types.CanonicalObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.CanonicalObject, 0, len(ids))
	for _, id := range ids {
		if obj, ok := s.objects[id]; ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

// ListObjects retrieves objects matching the filter, ordered by id for
// deterministic results.
func (s *MemoryStore) ListObjects(ctx context.Context, filter ObjectFilter) ([]*types.CanonicalObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.objects))
	for id := range s.objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*types.CanonicalObject
	for _, id := range ids {
		obj := s.objects[id]
		if filter.Platform != "" && obj.Platform != filter.Platform {
			continue
		}
		if filter.ObjectType != "" && obj.ObjectType != filter.ObjectType {
			continue
		}
		out = append(out, obj)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// UpsertObject creates or replaces an object.
func (s *MemoryStore) UpsertObject(ctx context.Context, obj *types.CanonicalObject) error {
	if err := obj.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[obj.ID] = obj
	return nil
}

// UpsertChunk creates or replaces a chunk.
func (s *MemoryStore) UpsertChunk(ctx context.Context, chunk *types.Chunk) error {
	if err := chunk.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[chunk.ID] = chunk
	return nil
}

// GetChunksByObject retrieves an object's chunks ordered by chunk index.
func (s *MemoryStore) GetChunksByObject(ctx context.Context, objectID string) ([]*types.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.Chunk
	for _, chunk := range s.chunks {
		if chunk.ParentObjectID == objectID {
			out = append(out, chunk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}

// SearchChunks performs brute-force top-K cosine search over all chunk
// embeddings, filtered by minScore.
func (s *MemoryStore) SearchChunks(ctx context.Context, queryVector []float32, topK int, minScore float64) ([]types.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]vector.ScoredItem[*types.Chunk], 0, len(s.chunks))
	for _, chunk := range s.chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		score := vector.CosineSimilarity(queryVector, chunk.Embedding)
		if score >= minScore {
			scored = append(scored, vector.ScoredItem[*types.Chunk]{Item: chunk, Score: score})
		}
	}

	top := vector.TopKByScore(scored, topK)
	out := make([]types.ScoredChunk, len(top))
	for i, item := range top {
		out[i] = types.ScoredChunk{Chunk: item.Item, Score: item.Score}
	}
	return out, nil
}

// MergeRelations unions targetIDs into the object's named relation and
// overwrites its match confidence.
func (s *MemoryStore) MergeRelations(ctx context.Context, objectID, relationName string, targetIDs []string, confidence float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[objectID]
	if !ok {
		return ErrObjectNotFound
	}
	obj.MergeRelationTargets(relationName, targetIDs)
	if obj.Properties == nil {
		obj.Properties = make(map[string]interface{})
	}
	obj.Properties[types.PropertyMatchConfidence] = confidence
	return nil
}

// Close implements Store; a memory store holds no external resources.
func (s *MemoryStore) Close() error {
	return nil
}
