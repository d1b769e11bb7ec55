package vector

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineToUnit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0.5},
		{1, 1},
	}
	for _, tt := range tests {
		if got := CosineToUnit(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CosineToUnit(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAverage(t *testing.T) {
	t.Parallel()

	t.Run("averages componentwise", func(t *testing.T) {
		avg, err := Average([][]float32{{1, 3}, {3, 5}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if avg[0] != 2 || avg[1] != 4 {
			t.Errorf("unexpected average: %v", avg)
		}
	})

	t.Run("no vectors", func(t *testing.T) {
		if _, err := Average(nil); err == nil {
			t.Error("expected error for empty input")
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		if _, err := Average([][]float32{{1, 2}, {1}}); err == nil {
			t.Error("expected error for mismatched dimensions")
		}
	})
}

func TestTopKByScore(t *testing.T) {
	t.Parallel()

	items := []ScoredItem[string]{
		{Item: "c", Score: 0.3},
		{Item: "a", Score: 0.9},
		{Item: "d", Score: 0.1},
		{Item: "b", Score: 0.5},
	}

	t.Run("returns top k descending", func(t *testing.T) {
		top := TopKByScore(items, 2)
		if len(top) != 2 {
			t.Fatalf("expected 2 items, got %d", len(top))
		}
		if top[0].Item != "a" || top[1].Item != "b" {
			t.Errorf("unexpected order: %v", top)
		}
	})

	t.Run("k larger than input", func(t *testing.T) {
		top := TopKByScore(items, 10)
		if len(top) != 4 {
			t.Fatalf("expected 4 items, got %d", len(top))
		}
		for i := 1; i < len(top); i++ {
			if top[i].Score > top[i-1].Score {
				t.Errorf("not descending at %d: %v", i, top)
			}
		}
	})

	t.Run("k zero", func(t *testing.T) {
		if top := TopKByScore(items, 0); len(top) != 0 {
			t.Errorf("expected empty, got %v", top)
		}
	})
}
