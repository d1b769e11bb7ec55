package types

import (
	"fmt"
)

// RelationType identifies the kind of edge between two objects.
type RelationType string

const (
	RelationCreatedBy      RelationType = "created_by"
	RelationUpdatedBy      RelationType = "updated_by"
	RelationAssignee       RelationType = "assignee"
	RelationParticipatedIn RelationType = "participated_in"
	RelationProjectRelated RelationType = "project_related"
	RelationSimilarTo      RelationType = "similar_to"
	RelationValidatedBy    RelationType = "validated_by"
	RelationResultedIn     RelationType = "resulted_in_issue"
)

// RelationSource records how a relation was derived.
type RelationSource string

const (
	// SourceExplicit marks relations read directly from structured fields.
	SourceExplicit RelationSource = "explicit"
	// SourceInferred marks relations derived from keyword overlap alone.
	SourceInferred RelationSource = "inferred"
	// SourceComputed marks relations whose score had a semantic component.
	SourceComputed RelationSource = "computed"
)

// precedence orders sources for dedup conflicts; higher wins.
func (s RelationSource) precedence() int {
	switch s {
	case SourceExplicit:
		return 3
	case SourceComputed:
		return 2
	case SourceInferred:
		return 1
	}
	return 0
}

// ScoreMethod labels how a similarity score was computed.
type ScoreMethod string

const (
	MethodKeyword  ScoreMethod = "keyword"
	MethodSemantic ScoreMethod = "semantic"
	MethodHybrid   ScoreMethod = "hybrid"
)

// SimilarityScore carries the provenance of a similarity-derived relation:
// the final score, its components, and the method that produced it.
// Components are nil when they did not participate.
type SimilarityScore struct {
	Score          float64     `json:"score"`
	Semantic       *float64    `json:"semantic,omitempty"`
	Keyword        *float64    `json:"keyword,omitempty"`
	SharedKeywords []string    `json:"shared_keywords,omitempty"`
	Method         ScoreMethod `json:"method"`
}

// Relation is a directed, typed edge between two object ids. Relations are
// derived data; the triple (FromID, ToID, Type) is the dedup key.
type Relation struct {
	FromID     string           `json:"from_id"`
	ToID       string           `json:"to_id"`
	Type       RelationType     `json:"type"`
	Source     RelationSource   `json:"source"`
	Confidence float64          `json:"confidence"`
	Score      *SimilarityScore `json:"score,omitempty"`
}

// Key returns the canonical dedup key for the relation.
func (r *Relation) Key() string {
	return fmt.Sprintf("%s|%s|%s", r.FromID, r.ToID, r.Type)
}

// Validate checks if the Relation has all required fields set.
func (r *Relation) Validate() error {
	if r.FromID == "" || r.ToID == "" {
		return ErrEmptyID
	}
	if r.Type == "" {
		return ErrEmptyType
	}
	return nil
}

// Supersedes reports whether r should replace other when both carry the
// same key. Explicit relations win over computed, computed over inferred;
// within the same source the higher confidence wins.
func (r *Relation) Supersedes(other *Relation) bool {
	if r.Source.precedence() != other.Source.precedence() {
		return r.Source.precedence() > other.Source.precedence()
	}
	return r.Confidence > other.Confidence
}

// DedupRelations collapses relations sharing a key, keeping the highest
// precedence derivation. Order of first appearance is preserved.
func DedupRelations(relations []Relation) []Relation {
	byKey := make(map[string]int, len(relations))
	out := make([]Relation, 0, len(relations))
	for _, rel := range relations {
		key := rel.Key()
		if idx, ok := byKey[key]; ok {
			if rel.Supersedes(&out[idx]) {
				out[idx] = rel
			}
			continue
		}
		byKey[key] = len(out)
		out = append(out, rel)
	}
	return out
}

// GroundTruthRelation is a curated relation used only for evaluation. The
// Scenario tag partitions evaluation datasets.
type GroundTruthRelation struct {
	FromID     string         `json:"from_id" yaml:"from_id"`
	ToID       string         `json:"to_id" yaml:"to_id"`
	Type       RelationType   `json:"type" yaml:"type"`
	Source     RelationSource `json:"source" yaml:"source"`
	Confidence float64        `json:"confidence" yaml:"confidence"`
	Scenario   string         `json:"scenario" yaml:"scenario"`
}

// Key returns the canonical comparison key, identical in shape to
// Relation.Key so inferred and ground-truth sets compare directly.
func (g *GroundTruthRelation) Key() string {
	return fmt.Sprintf("%s|%s|%s", g.FromID, g.ToID, g.Type)
}
