package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateEmptyFeedbackIsIdentity(t *testing.T) {
	current := []float32{0.6, 0.8}
	next, err := Update(current, nil)
	require.NoError(t, err)
	require.Equal(t, current, next)
}

func TestUpdateLikeMovesToward(t *testing.T) {
	current := []float32{1, 0}
	liked := []float32{0, 1}

	next, err := Update(current, []Feedback{{Vector: liked, Liked: true}})
	require.NoError(t, err)

	require.InDelta(t, 1.0, l2Norm(next), 1e-6)
	require.Greater(t, cosineSimilarity(next, liked), cosineSimilarity(current, liked))
}

func TestUpdateDislikeMovesAway(t *testing.T) {
	current, err := normalize([]float32{1, 1})
	require.NoError(t, err)
	disliked := []float32{0, 1}

	next, err := Update(current, []Feedback{{Vector: disliked, Liked: false}})
	require.NoError(t, err)

	require.InDelta(t, 1.0, l2Norm(next), 1e-6)
	require.Less(t, cosineSimilarity(next, disliked), cosineSimilarity(current, disliked))
}

func TestUpdateMixedBatchPreservesUnitNorm(t *testing.T) {
	current := []float32{0, 0, 1}
	feedback := []Feedback{
		{Vector: []float32{1, 0, 0}, Liked: true},
		{Vector: []float32{0, 1, 0}, Liked: true},
		{Vector: []float32{0, 0, 1}, Liked: false},
		{Vector: []float32{1, 1, 0}, Liked: false},
	}
	next, err := Update(current, feedback)
	require.NoError(t, err)
	require.InDelta(t, 1.0, l2Norm(next), 1e-6)
}

func TestUpdateFiveSwipeBatchShiftsEverySignal(t *testing.T) {
	current := []float32{1, 0, 0, 0}
	likedA := []float32{0, 1, 0, 0}
	likedB := []float32{0, 0, 1, 0}
	disliked := []float32{0, 0, 0, 1}

	next, err := Update(current, []Feedback{
		{Vector: likedA, Liked: true},
		{Vector: likedB, Liked: true},
		{Vector: disliked, Liked: false},
		{Vector: disliked, Liked: false},
		{Vector: disliked, Liked: false},
	})
	require.NoError(t, err)

	require.InDelta(t, 1.0, l2Norm(next), 1e-6)
	require.Greater(t, cosineSimilarity(next, likedA), cosineSimilarity(current, likedA))
	require.Greater(t, cosineSimilarity(next, likedB), cosineSimilarity(current, likedB))
	require.Less(t, cosineSimilarity(next, disliked), cosineSimilarity(current, disliked))
}

func TestUpdateDimensionMismatch(t *testing.T) {
	_, err := Update([]float32{1, 0}, []Feedback{{Vector: []float32{1, 0, 0}, Liked: true}})
	require.Error(t, err)
}

func TestUpdateDegenerateResult(t *testing.T) {
	// 0.1 * -10 exactly cancels the unit vector.
	current := []float32{1, 0}
	_, err := Update(current, []Feedback{{Vector: []float32{-10, 0}, Liked: true}})
	require.ErrorIs(t, err, ErrDegenerateEmbedding)
}
