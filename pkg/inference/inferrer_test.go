package inference

import (
	"math"
	"testing"
	"time"

	"github.com/teamtrace/relato/pkg/types"
)

func issueObject(id string, keywords []string) *types.CanonicalObject {
	obj := &types.CanonicalObject{
		ID:         id,
		Platform:   "jira",
		ObjectType: "issue",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if keywords != nil {
		obj.SetKeywords(keywords)
	}
	return obj
}

func findRelation(relations []types.Relation, fromID, toID string, relType types.RelationType) *types.Relation {
	for i := range relations {
		rel := &relations[i]
		if rel.FromID == fromID && rel.ToID == toID && rel.Type == relType {
			return rel
		}
	}
	return nil
}

func TestExtractExplicitActors(t *testing.T) {
	t.Parallel()

	obj := issueObject("x", nil)
	obj.Actors = map[string][]string{
		types.RoleCreatedBy:    {"alice"},
		types.RoleAssignee:     {"bob"},
		types.RoleParticipants: {"carol", "dave"},
	}

	inf := NewInferrer(DefaultConfig(), nil, nil)
	relations := inf.ExtractExplicit([]*types.CanonicalObject{obj})

	created := findRelation(relations, "x", "alice", types.RelationCreatedBy)
	if created == nil {
		t.Fatal("missing created_by relation")
	}
	if created.Confidence != 1.0 || created.Source != types.SourceExplicit {
		t.Errorf("unexpected created_by relation: %+v", created)
	}

	if findRelation(relations, "x", "bob", types.RelationAssignee) == nil {
		t.Error("missing assignee relation")
	}

	// Participants point actor -> object.
	for _, participant := range []string{"carol", "dave"} {
		if findRelation(relations, participant, "x", types.RelationParticipatedIn) == nil {
			t.Errorf("missing participated_in relation for %s", participant)
		}
	}
}

func TestExtractExplicitCrossReferences(t *testing.T) {
	t.Parallel()

	obj := issueObject("x", nil)
	obj.Relations = map[string][]string{
		"resulted_in_issue": {"y"},
		"validated_by":      {"z"},
	}

	inf := NewInferrer(DefaultConfig(), nil, nil)
	relations := inf.ExtractExplicit([]*types.CanonicalObject{obj})

	if findRelation(relations, "x", "y", types.RelationResultedIn) == nil {
		t.Error("missing resulted_in_issue relation")
	}
	if findRelation(relations, "x", "z", types.RelationValidatedBy) == nil {
		t.Error("missing validated_by relation")
	}
}

func TestExtractExplicitProjectRelated(t *testing.T) {
	t.Parallel()

	a := issueObject("a", nil)
	b := issueObject("b", nil)
	c := issueObject("c", nil)
	for _, obj := range []*types.CanonicalObject{a, b} {
		obj.Properties = map[string]interface{}{types.PropertyProjectID: "p1"}
	}
	c.Properties = map[string]interface{}{types.PropertyProjectID: "p2"}

	inf := NewInferrer(DefaultConfig(), nil, nil)
	relations := inf.ExtractExplicit([]*types.CanonicalObject{a, b, c})

	var projectEdges int
	for _, rel := range relations {
		if rel.Type == types.RelationProjectRelated {
			projectEdges++
		}
	}
	// One edge per unordered pair within a project.
	if projectEdges != 1 {
		t.Errorf("expected 1 project_related edge, got %d", projectEdges)
	}
	if findRelation(relations, "a", "b", types.RelationProjectRelated) == nil {
		t.Error("missing a-b project_related edge")
	}
}

func TestInferSimilarityThresholds(t *testing.T) {
	t.Parallel()

	x := issueObject("x", []string{"gmail", "sync", "oauth"})
	y := issueObject("y", []string{"gmail", "oauth", "ui"})

	t.Run("emits at threshold 0.3", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.KeywordOverlapThreshold = 0.3
		inf := NewInferrer(cfg, nil, nil)

		relations := inf.InferSimilarity([]*types.CanonicalObject{x, y})
		if len(relations) != 1 {
			t.Fatalf("expected 1 relation, got %d", len(relations))
		}
		rel := relations[0]
		if rel.Confidence != 0.5 {
			t.Errorf("expected confidence 0.5, got %v", rel.Confidence)
		}
		if rel.Source != types.SourceInferred {
			t.Errorf("expected inferred source, got %s", rel.Source)
		}
		if rel.Score == nil || rel.Score.Method != types.MethodKeyword {
			t.Errorf("unexpected score provenance: %+v", rel.Score)
		}
	})

	t.Run("suppressed at threshold 0.6", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.KeywordOverlapThreshold = 0.6
		inf := NewInferrer(cfg, nil, nil)

		relations := inf.InferSimilarity([]*types.CanonicalObject{x, y})
		if len(relations) != 0 {
			t.Errorf("expected no relations, got %v", relations)
		}
	})

	t.Run("inclusive comparison", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.KeywordOverlapThreshold = 0.5
		inf := NewInferrer(cfg, nil, nil)

		relations := inf.InferSimilarity([]*types.CanonicalObject{x, y})
		if len(relations) != 1 {
			t.Errorf("expected relation at exactly the threshold, got %d", len(relations))
		}
	})

	t.Run("identical ids compared once", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.KeywordOverlapThreshold = 0.1
		inf := NewInferrer(cfg, nil, nil)

		dup := issueObject("x", []string{"gmail", "sync", "oauth"})
		relations := inf.InferSimilarity([]*types.CanonicalObject{x, dup})
		if len(relations) != 0 {
			t.Errorf("expected no self relations, got %v", relations)
		}
	})
}

func TestHybridScoreBounds(t *testing.T) {
	t.Parallel()

	// Identical vectors give semantic = 1; keyword overlap is 0.5.
	vec := []float32{1, 0}
	kw := 0.5

	t.Run("weight 1 equals semantic", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SemanticWeight = 1
		inf := NewInferrer(cfg, nil, nil)

		result := inf.scorePair(kw, vec, vec)
		if math.Abs(result.Score-1.0) > 1e-9 {
			t.Errorf("expected 1.0, got %v", result.Score)
		}
		if result.Method != types.MethodSemantic {
			t.Errorf("expected semantic method, got %s", result.Method)
		}
	})

	t.Run("weight 0 equals keyword", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SemanticWeight = 0
		inf := NewInferrer(cfg, nil, nil)

		result := inf.scorePair(kw, vec, vec)
		if result.Score != kw {
			t.Errorf("expected %v, got %v", kw, result.Score)
		}
		if result.Method != types.MethodKeyword {
			t.Errorf("expected keyword method, got %s", result.Method)
		}
	})

	t.Run("hybrid lies between components", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SemanticWeight = 0.7
		inf := NewInferrer(cfg, nil, nil)

		result := inf.scorePair(kw, vec, vec)
		semantic := 1.0
		lo, hi := math.Min(kw, semantic), math.Max(kw, semantic)
		if result.Score < lo || result.Score > hi {
			t.Errorf("hybrid %v outside [%v, %v]", result.Score, lo, hi)
		}
		if result.Method != types.MethodHybrid {
			t.Errorf("expected hybrid method, got %s", result.Method)
		}
	})

	t.Run("missing vector falls back to keyword", func(t *testing.T) {
		inf := NewInferrer(DefaultConfig(), nil, nil)
		result := inf.scorePair(kw, vec, nil)
		if result.Score != kw || result.Method != types.MethodKeyword {
			t.Errorf("expected keyword fallback, got %+v", result)
		}
	})
}

func TestInferSimilarityWithEmbeddings(t *testing.T) {
	t.Parallel()

	x := issueObject("x", []string{"gmail", "sync", "oauth"})
	y := issueObject("y", []string{"gmail", "oauth", "ui"})

	t.Run("semantic component marks source computed", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SimilarityThreshold = 0.5
		inf := NewInferrer(cfg, nil, nil)

		embeddings := map[string][][]float32{
			"x": {{1, 0}},
			"y": {{1, 0}},
		}
		relations := inf.InferSimilarityWithEmbeddings([]*types.CanonicalObject{x, y}, embeddings)
		if len(relations) != 1 {
			t.Fatalf("expected 1 relation, got %d", len(relations))
		}
		rel := relations[0]
		if rel.Source != types.SourceComputed {
			t.Errorf("expected computed source, got %s", rel.Source)
		}
		if rel.Score == nil || rel.Score.Semantic == nil || rel.Score.Keyword == nil {
			t.Fatalf("missing score components: %+v", rel.Score)
		}
		// 0.7*1.0 + 0.3*0.5 = 0.85
		if math.Abs(rel.Score.Score-0.85) > 1e-9 {
			t.Errorf("expected hybrid 0.85, got %v", rel.Score.Score)
		}
		if rel.Confidence != 0.85 {
			t.Errorf("expected confidence 0.85, got %v", rel.Confidence)
		}
		if len(rel.Score.SharedKeywords) != 2 {
			t.Errorf("expected shared keywords, got %v", rel.Score.SharedKeywords)
		}
	})

	t.Run("object without vectors falls back to keyword", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SimilarityThreshold = 0.4
		inf := NewInferrer(cfg, nil, nil)

		embeddings := map[string][][]float32{"x": {{1, 0}}}
		relations := inf.InferSimilarityWithEmbeddings([]*types.CanonicalObject{x, y}, embeddings)
		if len(relations) != 1 {
			t.Fatalf("expected 1 relation, got %d", len(relations))
		}
		rel := relations[0]
		if rel.Source != types.SourceInferred {
			t.Errorf("expected inferred source on fallback, got %s", rel.Source)
		}
		if rel.Score.Method != types.MethodKeyword {
			t.Errorf("expected keyword method, got %s", rel.Score.Method)
		}
	})
}

func TestInferAllDedupPrecedence(t *testing.T) {
	t.Parallel()

	// Both objects share a project and nearly identical keywords, so the
	// same pair is produced by explicit extraction and by similarity.
	a := issueObject("a", []string{"gmail", "oauth"})
	b := issueObject("b", []string{"gmail", "oauth"})
	for _, obj := range []*types.CanonicalObject{a, b} {
		obj.Properties[types.PropertyProjectID] = "p1"
	}
	a.Relations = map[string][]string{"similar_to": {"b"}}

	cfg := DefaultConfig()
	cfg.KeywordOverlapThreshold = 0.1
	inf := NewInferrer(cfg, nil, nil)

	relations := inf.InferAll([]*types.CanonicalObject{a, b})
	rel := findRelation(relations, "a", "b", types.RelationSimilarTo)
	if rel == nil {
		t.Fatal("missing a-b similar_to relation")
	}
	if rel.Source != types.SourceExplicit {
		t.Errorf("expected explicit to win dedup, got %s", rel.Source)
	}
}

func TestInferAllRespectsIncludeInferred(t *testing.T) {
	t.Parallel()

	a := issueObject("a", []string{"gmail", "oauth"})
	b := issueObject("b", []string{"gmail", "oauth"})

	cfg := DefaultConfig()
	cfg.IncludeInferred = false
	cfg.KeywordOverlapThreshold = 0.1
	inf := NewInferrer(cfg, nil, nil)

	relations := inf.InferAll([]*types.CanonicalObject{a, b})
	if findRelation(relations, "a", "b", types.RelationSimilarTo) != nil {
		t.Error("similarity inference ran despite include_inferred=false")
	}
}

func TestKeywordsExtractedWhenAbsent(t *testing.T) {
	t.Parallel()

	a := issueObject("a", nil)
	a.Title = "Gmail oauth sync"
	b := issueObject("b", nil)
	b.Title = "Gmail oauth ui"

	cfg := DefaultConfig()
	cfg.KeywordOverlapThreshold = 0.3
	inf := NewInferrer(cfg, nil, nil)

	relations := inf.InferSimilarity([]*types.CanonicalObject{a, b})
	if len(relations) != 1 {
		t.Fatalf("expected extraction fallback to produce a relation, got %d", len(relations))
	}
}
