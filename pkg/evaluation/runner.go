package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teamtrace/relato/pkg/inference"
	"github.com/teamtrace/relato/pkg/store"
	"github.com/teamtrace/relato/pkg/types"
)

// Layer is a named inference configuration inside a sweep. The name
// becomes the sink record's layer key, so it must be stable across
// re-runs for upserts to land on the same row.
type Layer struct {
	Name   string           `json:"name"`
	Config inference.Config `json:"config"`
}

// DefaultLayers returns the standard threshold sweep used for tuning.
func DefaultLayers() []Layer {
	base := inference.DefaultConfig()
	var layers []Layer
	for _, threshold := range []float64{0.5, 0.6, 0.7, 0.8} {
		cfg := base
		cfg.SimilarityThreshold = threshold
		layers = append(layers, Layer{
			Name:   fmt.Sprintf("similarity_%.1f", threshold),
			Config: cfg,
		})
	}
	for _, threshold := range []float64{0.2, 0.3, 0.4} {
		cfg := base
		cfg.UseSemanticSimilarity = false
		cfg.KeywordOverlapThreshold = threshold
		layers = append(layers, Layer{
			Name:   fmt.Sprintf("keyword_%.1f", threshold),
			Config: cfg,
		})
	}
	return layers
}

// Runner replays relation inference over a fixed object set under a grid
// of configurations and scores each against ground truth.
type Runner struct {
	store  store.Store
	truth  GroundTruthSource
	sink   MetricsSink
	cache  *RunCache
	logger *slog.Logger
}

// NewRunner creates a Runner. The cache may be nil, in which case every
// layer is evaluated unconditionally; a nil logger falls back to
// slog.Default().
func NewRunner(st store.Store, truth GroundTruthSource, sink MetricsSink, cache *RunCache, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:  st,
		truth:  truth,
		sink:   sink,
		cache:  cache,
		logger: logger,
	}
}

// RunOptions controls one sweep.
type RunOptions struct {
	// ExperimentID names the sweep; records upsert under it. Empty gets a
	// generated id.
	ExperimentID string

	// Scenario selects the ground-truth partition to score against.
	Scenario string

	// Filter bounds the object set replayed.
	Filter store.ObjectFilter

	// Layers is the configuration grid; empty means DefaultLayers.
	Layers []Layer

	// WithEmbeddings loads chunk embeddings so semantic layers score with
	// real vectors. Without it every layer degrades to keyword-only.
	WithEmbeddings bool
}

// Summary reports the outcome of one sweep.
type Summary struct {
	ExperimentID string            `json:"experiment_id"`
	Evaluated    int               `json:"evaluated"`
	Skipped      int               `json:"skipped"`
	Reports      map[string]Report `json:"reports"`
}

// Run executes the sweep: for each layer, infer relations over the object
// set, evaluate against ground truth, and write the record to the sink.
// Layers already present in the run cache are skipped.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	experimentID := opts.ExperimentID
	if experimentID == "" {
		experimentID = uuid.New().String()
	}
	layers := opts.Layers
	if len(layers) == 0 {
		layers = DefaultLayers()
	}

	objects, err := r.store.ListObjects(ctx, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("object list failed: %w", err)
	}

	truth, err := r.truth.Relations(ctx, opts.Scenario)
	if err != nil {
		return nil, fmt.Errorf("ground truth fetch failed: %w", err)
	}

	var embeddings map[string][][]float32
	if opts.WithEmbeddings {
		embeddings, err = r.loadEmbeddings(ctx, objects)
		if err != nil {
			return nil, err
		}
	}

	summary := &Summary{
		ExperimentID: experimentID,
		Reports:      make(map[string]Report, len(layers)),
	}

	for _, layer := range layers {
		method := layerMethod(layer.Config, opts.WithEmbeddings)

		if r.cache != nil {
			runID, done, err := r.cache.Completed(experimentID, layer.Name, method)
			if err != nil {
				return nil, err
			}
			if done {
				r.logger.Debug("skipping cached layer",
					"experiment_id", experimentID, "layer", layer.Name, "run_id", runID)
				summary.Skipped++
				continue
			}
		}

		started := time.Now()
		inf := inference.NewInferrer(layer.Config, nil, r.logger)

		var relations []types.Relation
		if opts.WithEmbeddings {
			relations = inf.InferAllWithEmbeddings(objects, embeddings)
		} else {
			relations = inf.InferAll(objects)
		}

		report := Evaluate(relations, truth)
		duration := time.Since(started)

		if r.sink != nil {
			record := Record{
				ExperimentID:     experimentID,
				Layer:            layer.Name,
				EvaluationMethod: method,
				Report:           report,
				Duration:         duration,
			}
			if err := r.sink.Write(ctx, record); err != nil {
				return nil, fmt.Errorf("metrics write for layer %s failed: %w", layer.Name, err)
			}
		}

		if r.cache != nil {
			if err := r.cache.MarkCompleted(experimentID, layer.Name, method, uuid.New().String()); err != nil {
				return nil, err
			}
		}

		summary.Evaluated++
		summary.Reports[layer.Name] = report

		r.logger.Info("layer evaluated",
			"experiment_id", experimentID,
			"layer", layer.Name,
			"method", method,
			"precision", report.Overall.Precision,
			"recall", report.Overall.Recall,
			"f1", report.Overall.F1,
			"duration", duration)
	}

	return summary, nil
}

// loadEmbeddings gathers each object's chunk embeddings for semantic
// scoring. Objects without embedded chunks are simply absent from the
// map; inference falls back to keyword scoring for pairs involving them.
func (r *Runner) loadEmbeddings(ctx context.Context, objects []*types.CanonicalObject) (map[string][][]float32, error) {
	out := make(map[string][][]float32, len(objects))
	for _, obj := range objects {
		chunks, err := r.store.GetChunksByObject(ctx, obj.ID)
		if err != nil {
			return nil, fmt.Errorf("embedding load for %s failed: %w", obj.ID, err)
		}
		var vectors [][]float32
		for _, chunk := range chunks {
			if len(chunk.Embedding) > 0 {
				vectors = append(vectors, chunk.Embedding)
			}
		}
		if len(vectors) > 0 {
			out[obj.ID] = vectors
		}
	}
	return out, nil
}

// layerMethod labels how a layer scored similarity, for the sink key.
func layerMethod(cfg inference.Config, withEmbeddings bool) string {
	if !withEmbeddings || !cfg.UseSemanticSimilarity || cfg.SemanticWeight <= 0 {
		return string(types.MethodKeyword)
	}
	if cfg.SemanticWeight >= 1 {
		return string(types.MethodSemantic)
	}
	return string(types.MethodHybrid)
}
