package keywords

import (
	"math"
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	t.Parallel()
	extractor := Default()

	tests := []struct {
		name  string
		title string
		body  string
		want  []string
	}{
		{
			name:  "vocabulary hits",
			title: "Gmail sync broken",
			body:  "OAuth flow fails after the deploy",
			want:  []string{"deploy", "gmail", "oauth", "sync"},
		},
		{
			name:  "identifier tokens",
			title: "PROJ-123 blocks API2-4 rollout",
			body:  "",
			want:  []string{"API2-4", "PROJ-123"},
		},
		{
			name:  "union of both",
			title: "PROJ-9: login bug",
			body:  "see the ticket",
			want:  []string{"PROJ-9", "bug", "login", "ticket"},
		},
		{
			name:  "empty input",
			title: "",
			body:  "",
			want:  []string{},
		},
		{
			name:  "no partial word matches",
			title: "apiary synchronization",
			body:  "",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.Extract(tt.title, tt.body)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlap(t *testing.T) {
	t.Parallel()

	t.Run("jaccard index", func(t *testing.T) {
		a := []string{"gmail", "sync", "oauth"}
		b := []string{"gmail", "oauth", "ui"}
		got := Overlap(a, b)
		if math.Abs(got-0.5) > 1e-9 {
			t.Errorf("Overlap() = %v, want 0.5", got)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a := []string{"gmail", "sync", "oauth"}
		b := []string{"gmail", "oauth", "ui"}
		if Overlap(a, b) != Overlap(b, a) {
			t.Error("overlap is not symmetric")
		}
	})

	t.Run("empty set", func(t *testing.T) {
		if got := Overlap(nil, []string{"a"}); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
		if got := Overlap([]string{"a"}, nil); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("identical sets", func(t *testing.T) {
		a := []string{"x", "y"}
		if got := Overlap(a, a); got != 1 {
			t.Errorf("expected 1, got %v", got)
		}
	})

	t.Run("duplicates count once", func(t *testing.T) {
		a := []string{"x", "x", "y"}
		b := []string{"x", "y", "y"}
		if got := Overlap(a, b); got != 1 {
			t.Errorf("expected 1, got %v", got)
		}
	})
}

func TestShared(t *testing.T) {
	t.Parallel()

	got := Shared([]string{"sync", "gmail", "oauth"}, []string{"ui", "oauth", "gmail"})
	want := []string{"gmail", "oauth"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Shared() = %v, want %v", got, want)
	}

	if out := Shared(nil, []string{"a"}); len(out) != 0 {
		t.Errorf("expected empty, got %v", out)
	}
}
