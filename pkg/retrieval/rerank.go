package retrieval

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/teamtrace/relato/pkg/types"
)

// DecayFunc maps an age to a recency factor in [0, 1]; 1 means fully
// recent, 0 means beyond the horizon.
type DecayFunc func(age, maxAge time.Duration) float64

// LinearDecay falls off linearly with age and reaches 0 at maxAge.
func LinearDecay(age, maxAge time.Duration) float64 {
	if maxAge <= 0 || age >= maxAge {
		return 0
	}
	if age <= 0 {
		return 1
	}
	return 1 - float64(age)/float64(maxAge)
}

// ExponentialDecay halves the recency factor every tenth of maxAge and
// clamps to 0 past the horizon.
func ExponentialDecay(age, maxAge time.Duration) float64 {
	if maxAge <= 0 || age >= maxAge {
		return 0
	}
	if age <= 0 {
		return 1
	}
	halfLife := float64(maxAge) / 10
	return math.Exp2(-float64(age) / halfLife)
}

// StepDecay returns 1 inside the horizon and 0 outside it.
func StepDecay(age, maxAge time.Duration) float64 {
	if maxAge <= 0 || age >= maxAge {
		return 0
	}
	return 1
}

// RerankConfig controls recency-aware reordering of retrieval results.
type RerankConfig struct {
	// RecencyBoost scales the decay factor added to each chunk's
	// similarity score. 0 disables reranking.
	RecencyBoost float64 `json:"recency_boost" mapstructure:"recency_boost"`

	// MaxAgeDays is the horizon beyond which objects receive no boost.
	MaxAgeDays int `json:"max_age_days" mapstructure:"max_age_days"`

	// Decay selects the decay curve; nil means LinearDecay.
	Decay DecayFunc `json:"-" mapstructure:"-"`
}

// DefaultRerankConfig returns the default reranking configuration.
func DefaultRerankConfig() RerankConfig {
	return RerankConfig{
		RecencyBoost: 0.2,
		MaxAgeDays:   90,
		Decay:        LinearDecay,
	}
}

// RetrieveWithReranking runs Retrieve and reorders chunks by an adjusted
// score combining vector similarity with a recency boost derived from the
// parent object's update time. Objects are reordered to follow their best
// ranked chunk. The base similarity scores are preserved on the chunks;
// only ordering changes.
func (r *Retriever) RetrieveWithReranking(ctx context.Context, query string, rerank RerankConfig) (*Result, error) {
	result, err := r.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(result.Chunks) == 0 || rerank.RecencyBoost == 0 {
		return result, nil
	}

	decay := rerank.Decay
	if decay == nil {
		decay = LinearDecay
	}
	maxAge := time.Duration(rerank.MaxAgeDays) * 24 * time.Hour

	updatedAt := make(map[string]time.Time, len(result.Objects))
	for _, obj := range result.Objects {
		updatedAt[obj.ID] = obj.UpdatedAt
	}

	now := time.Now()
	adjusted := make([]float64, len(result.Chunks))
	for i, sc := range result.Chunks {
		score := sc.Score
		if ts, ok := updatedAt[sc.Chunk.ParentObjectID]; ok && !ts.IsZero() {
			score += rerank.RecencyBoost * decay(now.Sub(ts), maxAge)
		}
		adjusted[i] = score
	}

	order := make([]int, len(result.Chunks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return adjusted[order[a]] > adjusted[order[b]]
	})

	reranked := make([]types.ScoredChunk, len(order))
	for i, idx := range order {
		reranked[i] = result.Chunks[idx]
	}
	result.Chunks = reranked
	result.Objects = reorderObjects(result.Objects, reranked)

	return result, nil
}

// reorderObjects orders objects by the rank of their best chunk; objects
// without a surviving chunk keep their relative order at the tail.
func reorderObjects(objects []*types.CanonicalObject, chunks []types.ScoredChunk) []*types.CanonicalObject {
	rank := make(map[string]int, len(objects))
	for i, sc := range chunks {
		id := sc.Chunk.ParentObjectID
		if _, ok := rank[id]; !ok {
			rank[id] = i
		}
	}

	out := append([]*types.CanonicalObject(nil), objects...)
	sort.SliceStable(out, func(a, b int) bool {
		ra, oka := rank[out[a].ID]
		rb, okb := rank[out[b].ID]
		if oka != okb {
			return oka
		}
		return ra < rb
	})
	return out
}
