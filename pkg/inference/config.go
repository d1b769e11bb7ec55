package inference

// Config holds thresholds and weights for relation inference. Evaluation
// runs sweep these values against ground truth to tune them.
type Config struct {
	// SimilarityThreshold is the minimum hybrid/semantic score required to
	// emit a similarity relation from the embedding path. Inclusive.
	SimilarityThreshold float64 `json:"similarity_threshold" mapstructure:"similarity_threshold"`

	// KeywordOverlapThreshold is the minimum Jaccard index required to
	// emit a similarity relation from the keyword-only path. Inclusive.
	KeywordOverlapThreshold float64 `json:"keyword_overlap_threshold" mapstructure:"keyword_overlap_threshold"`

	// UseSemanticSimilarity enables blending embedding cosine scores into
	// the pairwise score when vectors are available.
	UseSemanticSimilarity bool `json:"use_semantic_similarity" mapstructure:"use_semantic_similarity"`

	// SemanticWeight is the weight on the semantic component in hybrid
	// scoring, in [0, 1]. The keyword component receives 1 - SemanticWeight.
	SemanticWeight float64 `json:"semantic_weight" mapstructure:"semantic_weight"`

	// IncludeInferred controls whether similarity inference runs at all;
	// when false InferAll returns explicit relations only.
	IncludeInferred bool `json:"include_inferred" mapstructure:"include_inferred"`
}

// DefaultConfig returns the default inference configuration.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold:     0.7,
		KeywordOverlapThreshold: 0.3,
		UseSemanticSimilarity:   true,
		SemanticWeight:          0.7,
		IncludeInferred:         true,
	}
}
