package evaluation

import (
	"fmt"

	"github.com/teamtrace/relato/pkg/types"
)

// NormalizeRelation returns the canonical comparison key for any
// relation-shaped triple.
func NormalizeRelation(fromID, toID string, relType types.RelationType) string {
	return fmt.Sprintf("%s|%s|%s", fromID, toID, relType)
}

// Metrics holds the confusion counts and derived scores for one
// comparison of inferred relations against ground truth.
type Metrics struct {
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
}

// computeMetrics derives precision/recall/F1 from key sets. All three are
// defined as 0 when their denominator is 0.
func computeMetrics(inferred, truth map[string]bool) Metrics {
	var m Metrics
	for key := range inferred {
		if truth[key] {
			m.TruePositives++
		} else {
			m.FalsePositives++
		}
	}
	for key := range truth {
		if !inferred[key] {
			m.FalseNegatives++
		}
	}

	if denom := m.TruePositives + m.FalsePositives; denom > 0 {
		m.Precision = float64(m.TruePositives) / float64(denom)
	}
	if denom := m.TruePositives + m.FalseNegatives; denom > 0 {
		m.Recall = float64(m.TruePositives) / float64(denom)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// Stage names used in the per-stage breakdown.
const (
	StageExplicit   = "explicit"
	StageSimilarity = "similarity"
)

// Report is the full evaluation output: overall metrics plus breakdowns
// by inference stage and by relation type.
type Report struct {
	Overall Metrics                        `json:"overall"`
	ByStage map[string]Metrics             `json:"by_stage"`
	ByType  map[types.RelationType]Metrics `json:"by_type"`
}

// Evaluate compares inferred relations against ground truth for one
// scenario. The stage breakdown partitions the inferred set by relation
// source (explicit extraction vs similarity inference) and ground truth
// by its source tag the same way; the type breakdown groups both sets by
// relation type before applying the same formulas.
func Evaluate(inferred []types.Relation, truth []types.GroundTruthRelation) Report {
	inferredKeys := make(map[string]bool, len(inferred))
	truthKeys := make(map[string]bool, len(truth))
	for i := range inferred {
		inferredKeys[inferred[i].Key()] = true
	}
	for i := range truth {
		truthKeys[truth[i].Key()] = true
	}

	report := Report{
		Overall: computeMetrics(inferredKeys, truthKeys),
		ByStage: make(map[string]Metrics),
		ByType:  make(map[types.RelationType]Metrics),
	}

	// Stage partition: explicit vs similarity (inferred + computed).
	for _, stage := range []string{StageExplicit, StageSimilarity} {
		inf := make(map[string]bool)
		tru := make(map[string]bool)
		for i := range inferred {
			if stageOf(inferred[i].Source) == stage {
				inf[inferred[i].Key()] = true
			}
		}
		for i := range truth {
			if stageOf(truth[i].Source) == stage {
				tru[truth[i].Key()] = true
			}
		}
		if len(inf) == 0 && len(tru) == 0 {
			continue
		}
		report.ByStage[stage] = computeMetrics(inf, tru)
	}

	// Type partition.
	typeSet := make(map[types.RelationType]bool)
	for i := range inferred {
		typeSet[inferred[i].Type] = true
	}
	for i := range truth {
		typeSet[truth[i].Type] = true
	}
	for relType := range typeSet {
		inf := make(map[string]bool)
		tru := make(map[string]bool)
		for i := range inferred {
			if inferred[i].Type == relType {
				inf[inferred[i].Key()] = true
			}
		}
		for i := range truth {
			if truth[i].Type == relType {
				tru[truth[i].Key()] = true
			}
		}
		report.ByType[relType] = computeMetrics(inf, tru)
	}

	return report
}

// stageOf maps a relation source to its inference stage. Keyword-inferred
// and semantic-computed relations both come out of similarity inference.
func stageOf(source types.RelationSource) string {
	if source == types.SourceExplicit {
		return StageExplicit
	}
	return StageSimilarity
}
