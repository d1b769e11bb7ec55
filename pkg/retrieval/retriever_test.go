package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/teamtrace/relato/pkg/store"
	"github.com/teamtrace/relato/pkg/types"
)

// fakeEmbedder returns a fixed vector for every input.
type fakeEmbedder struct {
	vector []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return f.vector, nil
}

func (f *fakeEmbedder) Dimensions() int { return len(f.vector) }

func (f *fakeEmbedder) TokensUsed() int64 { return 0 }

func (f *fakeEmbedder) Close() error { return nil }

func seedObject(t *testing.T, s store.Store, id string, updatedAt time.Time) *types.CanonicalObject {
	t.Helper()
	obj := &types.CanonicalObject{
		ID:         id,
		Platform:   "jira",
		ObjectType: "issue",
		UpdatedAt:  updatedAt,
	}
	if err := s.UpsertObject(context.Background(), obj); err != nil {
		t.Fatalf("upsert object %s: %v", id, err)
	}
	return obj
}

func seedChunk(t *testing.T, s store.Store, id, parentID string, index int, embedding []float32) {
	t.Helper()
	chunk := &types.Chunk{
		ID:             id,
		ParentObjectID: parentID,
		Content:        "content " + id,
		ChunkIndex:     index,
		Embedding:      embedding,
	}
	if err := s.UpsertChunk(context.Background(), chunk); err != nil {
		t.Fatalf("upsert chunk %s: %v", id, err)
	}
}

func newTestRetriever(s store.Store, config Config) *Retriever {
	return NewRetriever(s, &fakeEmbedder{vector: []float32{1, 0}}, nil, config, nil)
}

func TestRetrieve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()

	seedObject(t, s, "a", time.Now())
	seedObject(t, s, "b", time.Now())
	seedChunk(t, s, "a-0", "a", 0, []float32{1, 0})
	seedChunk(t, s, "a-1", "a", 1, []float32{0.9, 0.1})
	seedChunk(t, s, "b-0", "b", 0, []float32{0.5, 0.5})
	seedChunk(t, s, "c-0", "c", 0, []float32{0, 1})

	r := newTestRetriever(s, DefaultConfig())

	result, err := r.Retrieve(ctx, "login bug")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}

	if result.Query != "login bug" {
		t.Errorf("unexpected query echo: %s", result.Query)
	}
	// The orthogonal chunk falls below the 0.3 threshold.
	if result.Stats.ChunkCount != 3 {
		t.Errorf("expected 3 chunks, got %d", result.Stats.ChunkCount)
	}
	if result.Chunks[0].Chunk.ID != "a-0" {
		t.Errorf("expected best match first, got %s", result.Chunks[0].Chunk.ID)
	}

	// Parent objects follow chunk ranking and are distinct; chunk c-0's
	// parent does not exist and is omitted.
	if len(result.Objects) != 2 || result.Objects[0].ID != "a" || result.Objects[1].ID != "b" {
		t.Errorf("unexpected objects: %v", result.Objects)
	}
	if result.Stats.ObjectCount != 2 {
		t.Errorf("unexpected object count: %d", result.Stats.ObjectCount)
	}
}

func TestRetrieveChunkLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()

	seedObject(t, s, "a", time.Now())
	seedChunk(t, s, "a-0", "a", 0, []float32{1, 0})
	seedChunk(t, s, "a-1", "a", 1, []float32{0.9, 0.1})

	cfg := DefaultConfig()
	cfg.ChunkLimit = 1
	r := newTestRetriever(s, cfg)

	result, err := r.Retrieve(ctx, "q")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(result.Chunks) != 1 {
		t.Errorf("expected 1 chunk, got %d", len(result.Chunks))
	}
}

func TestRetrieveWithoutRelations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()

	a := seedObject(t, s, "a", time.Now())
	a.Actors = map[string][]string{types.RoleCreatedBy: {"alice"}}
	seedChunk(t, s, "a-0", "a", 0, []float32{1, 0})

	cfg := DefaultConfig()
	cfg.IncludeRelations = false
	r := newTestRetriever(s, cfg)

	result, err := r.Retrieve(ctx, "q")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(result.Relations) != 0 {
		t.Errorf("expected no relations, got %v", result.Relations)
	}
}

func TestRetrieveWithExpansion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()

	// a references b and the unresolvable ghost; only a is matched by
	// vector search.
	a := seedObject(t, s, "a", time.Now())
	a.Relations = map[string][]string{"similar_to": {"b", "ghost"}}
	seedObject(t, s, "b", time.Now())
	seedChunk(t, s, "a-0", "a", 0, []float32{1, 0})

	r := newTestRetriever(s, DefaultConfig())

	result, err := r.RetrieveWithExpansion(ctx, "q")
	if err != nil {
		t.Fatalf("retrieve with expansion: %v", err)
	}

	if len(result.Objects) != 2 {
		t.Fatalf("expected a and b, got %v", result.Objects)
	}
	if result.Stats.ExpandedCount != 1 {
		t.Errorf("expected 1 expanded object, got %d", result.Stats.ExpandedCount)
	}

	for _, rel := range result.Relations {
		if rel.ToID == "ghost" {
			t.Errorf("relation to unresolvable id survived: %+v", rel)
		}
	}
	found := false
	for _, rel := range result.Relations {
		if rel.FromID == "a" && rel.ToID == "b" {
			found = true
		}
	}
	if !found {
		t.Error("missing a-b relation after expansion")
	}
}

func TestRetrieveWithExpansionKeepsActorEdges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()

	a := seedObject(t, s, "a", time.Now())
	a.Actors = map[string][]string{types.RoleCreatedBy: {"alice"}}
	seedChunk(t, s, "a-0", "a", 0, []float32{1, 0})

	r := newTestRetriever(s, DefaultConfig())

	result, err := r.RetrieveWithExpansion(ctx, "q")
	if err != nil {
		t.Fatalf("retrieve with expansion: %v", err)
	}

	found := false
	for _, rel := range result.Relations {
		if rel.Type == types.RelationCreatedBy && rel.ToID == "alice" {
			found = true
		}
	}
	if !found {
		t.Error("actor edge was dropped by closure filtering")
	}
}

func TestGetRelatedObjects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()

	// a -> b -> c with a cycle back to a.
	a := seedObject(t, s, "a", time.Now())
	a.Relations = map[string][]string{"similar_to": {"b"}}
	b := seedObject(t, s, "b", time.Now())
	b.Relations = map[string][]string{"similar_to": {"c", "a"}}
	seedObject(t, s, "c", time.Now())

	r := newTestRetriever(s, DefaultConfig())

	t.Run("single hop", func(t *testing.T) {
		nb, err := r.GetRelatedObjects(ctx, "a", 1)
		if err != nil {
			t.Fatalf("traversal: %v", err)
		}
		if len(nb.Objects) != 1 || nb.Objects[0].ID != "b" {
			t.Errorf("unexpected objects: %v", nb.Objects)
		}
		if len(nb.Relations) != 1 {
			t.Errorf("unexpected relations: %v", nb.Relations)
		}
	})

	t.Run("two hops terminate on cycle", func(t *testing.T) {
		nb, err := r.GetRelatedObjects(ctx, "a", 2)
		if err != nil {
			t.Fatalf("traversal: %v", err)
		}
		if len(nb.Objects) != 2 {
			t.Fatalf("expected b and c, got %v", nb.Objects)
		}
		for _, obj := range nb.Objects {
			if obj.ID == "a" {
				t.Error("start object included in traversal result")
			}
		}
	})

	t.Run("depth defaults to config", func(t *testing.T) {
		nb, err := r.GetRelatedObjects(ctx, "a", 0)
		if err != nil {
			t.Fatalf("traversal: %v", err)
		}
		if len(nb.Objects) != 1 {
			t.Errorf("expected single-hop default, got %v", nb.Objects)
		}
	})

	t.Run("missing root errors", func(t *testing.T) {
		if _, err := r.GetRelatedObjects(ctx, "nope", 1); err == nil {
			t.Error("expected error for missing root")
		}
	})
}
