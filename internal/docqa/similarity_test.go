package docqa

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
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMostSimilar(t *testing.T) {
	t.Parallel()

	candidates := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}

	if got := mostSimilar(candidates, []float32{0, 1, 0}); got != 1 {
		t.Errorf("mostSimilar = %d, want 1", got)
	}
	if got := mostSimilar(candidates, []float32{0.1, 0, 0.9}); got != 2 {
		t.Errorf("mostSimilar = %d, want 2", got)
	}
}

func TestMostSimilarTieReturnsFirst(t *testing.T) {
	t.Parallel()

	candidates := [][]float32{
		{1, 1},
		{2, 2},
		{3, 3},
	}
	if got := mostSimilar(candidates, []float32{1, 1}); got != 0 {
		t.Errorf("mostSimilar = %d, want 0 on tie", got)
	}
}
