package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	vec, err := normalize([]float32{3, 4})
	require.NoError(t, err)
	require.InDelta(t, 0.6, float64(vec[0]), 1e-6)
	require.InDelta(t, 0.8, float64(vec[1]), 1e-6)
	require.InDelta(t, 1.0, l2Norm(vec), 1e-6)
}

func TestNormalizeDegenerate(t *testing.T) {
	_, err := normalize([]float32{0, 0, 0})
	require.ErrorIs(t, err, ErrDegenerateEmbedding)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			require.InDelta(t, tt.want, float64(got), 1e-6)
		})
	}
}

func TestCosineSimilarityDimensionMismatchPanics(t *testing.T) {
	require.Panics(t, func() {
		cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0})
	})
}

func TestNormalizeSelfSimilarity(t *testing.T) {
	vec, err := normalize([]float32{0.3, -1.2, 2.5, 0.01})
	require.NoError(t, err)
	got := cosineSimilarity(vec, vec)
	require.True(t, math.Abs(float64(got)-1.0) < 1e-5)
}
