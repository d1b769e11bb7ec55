package inference

import (
	"log/slog"

	"github.com/teamtrace/relato/pkg/keywords"
	"github.com/teamtrace/relato/pkg/types"
)

// Inferrer derives relations between canonical objects. It holds no
// mutable state beyond its configuration and is safe for concurrent use.
type Inferrer struct {
	config    Config
	extractor *keywords.Extractor
	logger    *slog.Logger
}

// NewInferrer creates an Inferrer with the given configuration. A nil
// extractor falls back to the default vocabulary; a nil logger falls back
// to slog.Default().
func NewInferrer(config Config, extractor *keywords.Extractor, logger *slog.Logger) *Inferrer {
	if extractor == nil {
		extractor = keywords.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inferrer{
		config:    config,
		extractor: extractor,
		logger:    logger,
	}
}

// Config returns the inferrer's configuration.
func (inf *Inferrer) Config() Config {
	return inf.config
}

// InferAll returns the union of explicit and keyword-similarity relations
// over the object set, deduplicated by (from, to, type) with explicit
// relations taking precedence.
func (inf *Inferrer) InferAll(objects []*types.CanonicalObject) []types.Relation {
	relations := inf.ExtractExplicit(objects)
	if inf.config.IncludeInferred {
		relations = append(relations, inf.InferSimilarity(objects)...)
	}
	return types.DedupRelations(relations)
}

// InferAllWithEmbeddings is InferAll with the embedding-aware similarity
// path. embeddingsByObject maps object id to that object's chunk vectors;
// objects missing from the map fall back to keyword-only comparison.
func (inf *Inferrer) InferAllWithEmbeddings(objects []*types.CanonicalObject, embeddingsByObject map[string][][]float32) []types.Relation {
	relations := inf.ExtractExplicit(objects)
	if inf.config.IncludeInferred {
		relations = append(relations, inf.InferSimilarityWithEmbeddings(objects, embeddingsByObject)...)
	}
	return types.DedupRelations(relations)
}

// objectKeywords returns the object's stored keyword set, extracting one
// from title and body when the property is absent.
func (inf *Inferrer) objectKeywords(obj *types.CanonicalObject) []string {
	if kws := obj.Keywords(); kws != nil {
		return kws
	}
	return inf.extractor.Extract(obj.Title, obj.Body)
}
