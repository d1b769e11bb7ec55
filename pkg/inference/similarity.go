package inference

import (
	"math"

	"github.com/teamtrace/relato/pkg/keywords"
	"github.com/teamtrace/relato/pkg/types"
	"github.com/teamtrace/relato/pkg/vector"
)

// InferSimilarity compares every unordered pair of distinct objects by
// keyword overlap (Jaccard index) and emits a similar_to relation with
// source inferred when the score meets the keyword overlap threshold.
// Confidence is the score rounded to two decimals.
func (inf *Inferrer) InferSimilarity(objects []*types.CanonicalObject) []types.Relation {
	keywordSets := make([][]string, len(objects))
	for i, obj := range objects {
		keywordSets[i] = inf.objectKeywords(obj)
	}

	var relations []types.Relation
	for i := 0; i < len(objects); i++ {
		for j := i + 1; j < len(objects); j++ {
			if objects[i].ID == objects[j].ID {
				continue
			}
			score := keywords.Overlap(keywordSets[i], keywordSets[j])
			if score < inf.config.KeywordOverlapThreshold {
				continue
			}
			kw := score
			relations = append(relations, types.Relation{
				FromID:     objects[i].ID,
				ToID:       objects[j].ID,
				Type:       types.RelationSimilarTo,
				Source:     types.SourceInferred,
				Confidence: roundConfidence(score),
				Score: &types.SimilarityScore{
					Score:          score,
					Keyword:        &kw,
					SharedKeywords: keywords.Shared(keywordSets[i], keywordSets[j]),
					Method:         types.MethodKeyword,
				},
			})
		}
	}
	return relations
}

// InferSimilarityWithEmbeddings compares every unordered pair of distinct
// objects by a hybrid of semantic and keyword similarity.
//
// Each object's chunk vectors are averaged into a single vector; objects
// with no vectors are excluded from semantic comparison and pairs
// involving them fall back to keyword-only scoring. The semantic score is
// the cosine similarity of the averaged vectors mapped to [0, 1]. When
// semantic similarity is enabled and both objects have vectors, the pair
// score is SemanticWeight*semantic + (1-SemanticWeight)*keyword.
//
// A relation is emitted when the pair score meets the similarity
// threshold; its source is computed when the semantic component
// contributed and inferred otherwise. Score provenance (components,
// shared keywords, method) is attached for downstream explainability.
func (inf *Inferrer) InferSimilarityWithEmbeddings(objects []*types.CanonicalObject, embeddingsByObject map[string][][]float32) []types.Relation {
	keywordSets := make([][]string, len(objects))
	for i, obj := range objects {
		keywordSets[i] = inf.objectKeywords(obj)
	}

	// Average each object's chunk vectors once up front. Objects with no
	// vectors simply have no entry here.
	averaged := make(map[string][]float32, len(embeddingsByObject))
	for id, vectors := range embeddingsByObject {
		avg, err := vector.Average(vectors)
		if err != nil {
			inf.logger.Debug("object excluded from semantic comparison",
				"object_id", id, "reason", err)
			continue
		}
		averaged[id] = avg
	}

	var relations []types.Relation
	for i := 0; i < len(objects); i++ {
		for j := i + 1; j < len(objects); j++ {
			if objects[i].ID == objects[j].ID {
				continue
			}

			kwScore := keywords.Overlap(keywordSets[i], keywordSets[j])
			result := inf.scorePair(kwScore, averaged[objects[i].ID], averaged[objects[j].ID])
			if result.Score < inf.config.SimilarityThreshold {
				continue
			}

			source := types.SourceInferred
			if result.Method != types.MethodKeyword {
				source = types.SourceComputed
			}
			result.SharedKeywords = keywords.Shared(keywordSets[i], keywordSets[j])

			relations = append(relations, types.Relation{
				FromID:     objects[i].ID,
				ToID:       objects[j].ID,
				Type:       types.RelationSimilarTo,
				Source:     source,
				Confidence: roundConfidence(result.Score),
				Score:      result,
			})
		}
	}
	return relations
}

// scorePair combines the keyword score with the semantic score of two
// averaged vectors into a tagged result. The method field records which
// components participated rather than being re-derived downstream.
func (inf *Inferrer) scorePair(kwScore float64, vecA, vecB []float32) *types.SimilarityScore {
	kw := kwScore

	if !inf.config.UseSemanticSimilarity || inf.config.SemanticWeight <= 0 || vecA == nil || vecB == nil {
		return &types.SimilarityScore{
			Score:   kwScore,
			Keyword: &kw,
			Method:  types.MethodKeyword,
		}
	}

	semantic := vector.CosineToUnit(vector.CosineSimilarity(vecA, vecB))
	w := inf.config.SemanticWeight
	hybrid := w*semantic + (1-w)*kwScore

	method := types.MethodHybrid
	if w >= 1 {
		method = types.MethodSemantic
	}

	return &types.SimilarityScore{
		Score:    hybrid,
		Semantic: &semantic,
		Keyword:  &kw,
		Method:   method,
	}
}

// roundConfidence rounds a score to two decimals for relation confidence.
func roundConfidence(score float64) float64 {
	return math.Round(score*100) / 100
}
