package store

import (
	"context"
	"errors"
	"testing"

	"github.com/teamtrace/relato/pkg/types"
)

func seedObject(t *testing.T, s Store, id, platform, objectType string) *types.CanonicalObject {
	t.Helper()
	obj := &types.CanonicalObject{ID: id, Platform: platform, ObjectType: objectType}
	if err := s.UpsertObject(context.Background(), obj); err != nil {
		t.Fatalf("upsert object %s: %v", id, err)
	}
	return obj
}

func seedChunk(t *testing.T, s Store, id, parentID string, index int, embedding []float32) {
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

func TestMemoryStoreObjects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	seedObject(t, s, "a", "jira", "issue")
	seedObject(t, s, "b", "slack", "message")
	seedObject(t, s, "c", "jira", "comment")

	t.Run("get by id", func(t *testing.T) {
		obj, err := s.GetObject(ctx, "a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if obj.Platform != "jira" {
			t.Errorf("unexpected platform: %s", obj.Platform)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if _, err := s.GetObject(ctx, "nope"); !errors.Is(err, ErrObjectNotFound) {
			t.Errorf("expected ErrObjectNotFound, got %v", err)
		}
	})

	t.Run("batch get omits unknown ids", func(t *testing.T) {
		objs, err := s.GetObjects(ctx, []string{"a", "nope", "b"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(objs) != 2 || objs[0].ID != "a" || objs[1].ID != "b" {
			t.Errorf("unexpected result: %v", objs)
		}
	})

	t.Run("list with platform filter", func(t *testing.T) {
		objs, err := s.ListObjects(ctx, ObjectFilter{Platform: "jira"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(objs) != 2 {
			t.Errorf("expected 2 objects, got %d", len(objs))
		}
	})

	t.Run("list with type filter and limit", func(t *testing.T) {
		objs, err := s.ListObjects(ctx, ObjectFilter{Platform: "jira", ObjectType: "issue", Limit: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(objs) != 1 || objs[0].ID != "a" {
			t.Errorf("unexpected result: %v", objs)
		}
	})

	t.Run("invalid object rejected", func(t *testing.T) {
		err := s.UpsertObject(ctx, &types.CanonicalObject{ID: "x"})
		if !errors.Is(err, types.ErrEmptyPlatform) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestMemoryStoreChunks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	seedObject(t, s, "a", "jira", "issue")
	seedChunk(t, s, "a-1", "a", 1, []float32{0, 1})
	seedChunk(t, s, "a-0", "a", 0, []float32{1, 0})
	seedChunk(t, s, "b-0", "b", 0, []float32{0.9, 0.1})

	t.Run("chunks ordered by index", func(t *testing.T) {
		chunks, err := s.GetChunksByObject(ctx, "a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunks) != 2 || chunks[0].ID != "a-0" || chunks[1].ID != "a-1" {
			t.Errorf("unexpected order: %v", chunks)
		}
	})

	t.Run("search ranks by cosine", func(t *testing.T) {
		results, err := s.SearchChunks(ctx, []float32{1, 0}, 10, 0.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Chunk.ID != "a-0" {
			t.Errorf("expected a-0 first, got %s", results[0].Chunk.ID)
		}
		if results[0].Score < results[1].Score {
			t.Error("results not descending")
		}
	})

	t.Run("min score filters", func(t *testing.T) {
		results, err := s.SearchChunks(ctx, []float32{1, 0}, 10, 0.99)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("expected 1 result, got %d", len(results))
		}
	})

	t.Run("top k truncates", func(t *testing.T) {
		results, err := s.SearchChunks(ctx, []float32{1, 0}, 1, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("expected 1 result, got %d", len(results))
		}
	})
}

func TestMemoryStoreMergeRelations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	seedObject(t, s, "a", "jira", "issue")

	if err := s.MergeRelations(ctx, "a", "similar_to", []string{"b", "c"}, 0.7); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := s.MergeRelations(ctx, "a", "similar_to", []string{"c", "d"}, 0.8); err != nil {
		t.Fatalf("merge: %v", err)
	}

	obj, err := s.GetObject(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := obj.Relations["similar_to"]; len(got) != 3 {
		t.Errorf("expected union of 3 targets, got %v", got)
	}
	if conf := obj.Properties[types.PropertyMatchConfidence]; conf != 0.8 {
		t.Errorf("expected confidence overwritten to 0.8, got %v", conf)
	}

	if err := s.MergeRelations(ctx, "nope", "similar_to", []string{"b"}, 0.5); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}
