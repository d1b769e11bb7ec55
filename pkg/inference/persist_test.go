package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/teamtrace/relato/pkg/store"
	"github.com/teamtrace/relato/pkg/types"
)

// failingWriter fails MergeRelations for a chosen object id.
type failingWriter struct {
	inner  store.RelationWriter
	failOn string
}

func (w *failingWriter) MergeRelations(ctx context.Context, objectID, relationName string, targetIDs []string, confidence float64) error {
	if objectID == w.failOn {
		return errors.New("backend unavailable")
	}
	return w.inner.MergeRelations(ctx, objectID, relationName, targetIDs, confidence)
}

func TestPersistMatches(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := store.NewMemoryStore()
	for _, id := range []string{"a", "b", "c"} {
		obj := issueObject(id, nil)
		if err := st.UpsertObject(ctx, obj); err != nil {
			t.Fatalf("seed object %s: %v", id, err)
		}
	}

	relations := []types.Relation{
		{FromID: "a", ToID: "b", Type: types.RelationSimilarTo, Source: types.SourceInferred, Confidence: 0.5},
		{FromID: "a", ToID: "c", Type: types.RelationSimilarTo, Source: types.SourceInferred, Confidence: 0.6},
	}

	stats := PersistMatches(ctx, st, relations, nil)
	if stats.Persisted != 2 || stats.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	obj, err := st.GetObject(ctx, "a")
	if err != nil {
		t.Fatalf("get object: %v", err)
	}
	targets := obj.Relations[string(types.RelationSimilarTo)]
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %v", targets)
	}
	if conf, ok := obj.Properties[types.PropertyMatchConfidence].(float64); !ok || conf != 0.6 {
		t.Errorf("expected match_confidence 0.6, got %v", obj.Properties[types.PropertyMatchConfidence])
	}
}

func TestPersistMatchesIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := store.NewMemoryStore()
	if err := st.UpsertObject(ctx, issueObject("a", nil)); err != nil {
		t.Fatalf("seed object: %v", err)
	}

	relations := []types.Relation{
		{FromID: "a", ToID: "b", Type: types.RelationSimilarTo, Confidence: 0.5},
	}

	PersistMatches(ctx, st, relations, nil)
	PersistMatches(ctx, st, relations, nil)

	obj, err := st.GetObject(ctx, "a")
	if err != nil {
		t.Fatalf("get object: %v", err)
	}
	if targets := obj.Relations[string(types.RelationSimilarTo)]; len(targets) != 1 {
		t.Errorf("re-apply duplicated targets: %v", targets)
	}
}

func TestPersistMatchesCountsFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := store.NewMemoryStore()
	if err := st.UpsertObject(ctx, issueObject("a", nil)); err != nil {
		t.Fatalf("seed object: %v", err)
	}

	writer := &failingWriter{inner: st, failOn: "missing"}
	relations := []types.Relation{
		{FromID: "missing", ToID: "b", Type: types.RelationSimilarTo, Confidence: 0.5},
		{FromID: "a", ToID: "b", Type: types.RelationSimilarTo, Confidence: 0.5},
	}

	stats := PersistMatches(ctx, writer, relations, nil)
	if stats.Persisted != 1 || stats.Failed != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
