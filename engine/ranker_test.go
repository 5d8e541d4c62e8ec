package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/artrec/hunterd/store"
)

func embeddedFixture(id string, vec []float32) EmbeddedItem {
	return EmbeddedItem{
		Item:   &store.CandidateItem{ItemID: id},
		Vector: vec,
	}
}

func TestRankOrdersBySimilarity(t *testing.T) {
	taste := []float32{1, 0}
	candidates := []EmbeddedItem{
		embeddedFixture("orthogonal", []float32{0, 1}),
		embeddedFixture("aligned", []float32{1, 0}),
		embeddedFixture("opposite", []float32{-1, 0}),
		embeddedFixture("diagonal", []float32{0.7071, 0.7071}),
	}

	ranked := Rank(taste, candidates, 4)
	require.Len(t, ranked, 4)
	require.Equal(t, "aligned", ranked[0].Item.ItemID)
	require.Equal(t, "diagonal", ranked[1].Item.ItemID)
	require.Equal(t, "orthogonal", ranked[2].Item.ItemID)
	require.Equal(t, "opposite", ranked[3].Item.ItemID)
	require.InDelta(t, 1.0, float64(ranked[0].Score), 1e-5)
}

func TestRankTruncatesToK(t *testing.T) {
	taste := []float32{1, 0}
	candidates := []EmbeddedItem{
		embeddedFixture("a", []float32{1, 0}),
		embeddedFixture("b", []float32{0, 1}),
		embeddedFixture("c", []float32{-1, 0}),
	}
	require.Len(t, Rank(taste, candidates, 2), 2)
}

func TestRankDefaultK(t *testing.T) {
	taste := []float32{1, 0}
	candidates := make([]EmbeddedItem, 0, 15)
	for i := 0; i < 15; i++ {
		candidates = append(candidates, embeddedFixture("x", []float32{1, float32(i)}))
	}
	require.Len(t, Rank(taste, candidates, 0), defaultTopK)
}

func TestRankEmptyInput(t *testing.T) {
	require.Empty(t, Rank([]float32{1, 0}, nil, 5))
}

func TestRankStableOnTies(t *testing.T) {
	taste := []float32{1, 0}
	candidates := []EmbeddedItem{
		embeddedFixture("first", []float32{0, 1}),
		embeddedFixture("second", []float32{0, 1}),
	}
	ranked := Rank(taste, candidates, 2)
	require.Equal(t, "first", ranked[0].Item.ItemID)
	require.Equal(t, "second", ranked[1].Item.ItemID)
}
