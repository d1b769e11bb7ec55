package retrieval

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/teamtrace/relato/pkg/store"
)

func TestDecayFunctions(t *testing.T) {
	t.Parallel()
	maxAge := 90 * 24 * time.Hour

	t.Run("fresh is fully recent", func(t *testing.T) {
		for _, fn := range []DecayFunc{LinearDecay, ExponentialDecay, StepDecay} {
			if got := fn(0, maxAge); got != 1 {
				t.Errorf("decay(0) = %v, want 1", got)
			}
		}
	})

	t.Run("zero past the horizon", func(t *testing.T) {
		for _, fn := range []DecayFunc{LinearDecay, ExponentialDecay, StepDecay} {
			if got := fn(maxAge, maxAge); got != 0 {
				t.Errorf("decay(maxAge) = %v, want 0", got)
			}
			if got := fn(maxAge+time.Hour, maxAge); got != 0 {
				t.Errorf("decay(maxAge+1h) = %v, want 0", got)
			}
		}
	})

	t.Run("zero horizon", func(t *testing.T) {
		for _, fn := range []DecayFunc{LinearDecay, ExponentialDecay, StepDecay} {
			if got := fn(time.Hour, 0); got != 0 {
				t.Errorf("decay with zero horizon = %v, want 0", got)
			}
		}
	})

	t.Run("linear midpoint", func(t *testing.T) {
		if got := LinearDecay(maxAge/2, maxAge); math.Abs(got-0.5) > 1e-9 {
			t.Errorf("LinearDecay at midpoint = %v, want 0.5", got)
		}
	})

	t.Run("exponential halves per tenth", func(t *testing.T) {
		if got := ExponentialDecay(maxAge/10, maxAge); math.Abs(got-0.5) > 1e-9 {
			t.Errorf("ExponentialDecay at one half-life = %v, want 0.5", got)
		}
	})

	t.Run("step stays flat inside horizon", func(t *testing.T) {
		if got := StepDecay(maxAge-time.Hour, maxAge); got != 1 {
			t.Errorf("StepDecay inside horizon = %v, want 1", got)
		}
	})
}

func TestRetrieveWithReranking(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()

	// stale scores slightly higher on similarity but is far older.
	seedObject(t, s, "fresh", time.Now().Add(-24*time.Hour))
	seedObject(t, s, "stale", time.Now().Add(-200*24*time.Hour))
	seedChunk(t, s, "stale-0", "stale", 0, []float32{1, 0})
	seedChunk(t, s, "fresh-0", "fresh", 0, []float32{0.95, 0.05})

	r := newTestRetriever(s, DefaultConfig())

	t.Run("recency promotes fresh results", func(t *testing.T) {
		result, err := r.RetrieveWithReranking(ctx, "q", RerankConfig{
			RecencyBoost: 0.5,
			MaxAgeDays:   90,
			Decay:        LinearDecay,
		})
		if err != nil {
			t.Fatalf("rerank: %v", err)
		}
		if result.Chunks[0].Chunk.ID != "fresh-0" {
			t.Errorf("expected fresh-0 first, got %s", result.Chunks[0].Chunk.ID)
		}
		if result.Objects[0].ID != "fresh" {
			t.Errorf("expected objects to follow chunk order, got %s", result.Objects[0].ID)
		}
	})

	t.Run("base scores preserved", func(t *testing.T) {
		result, err := r.RetrieveWithReranking(ctx, "q", DefaultRerankConfig())
		if err != nil {
			t.Fatalf("rerank: %v", err)
		}
		for _, sc := range result.Chunks {
			if sc.Score > 1 {
				t.Errorf("boost leaked into stored score: %v", sc.Score)
			}
		}
	})

	t.Run("zero boost keeps similarity order", func(t *testing.T) {
		result, err := r.RetrieveWithReranking(ctx, "q", RerankConfig{MaxAgeDays: 90})
		if err != nil {
			t.Fatalf("rerank: %v", err)
		}
		if result.Chunks[0].Chunk.ID != "stale-0" {
			t.Errorf("expected similarity order, got %s", result.Chunks[0].Chunk.ID)
		}
	})
}
