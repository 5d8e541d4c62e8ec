package engine

import (
	"sort"

	"github.com/artrec/hunterd/store"
)

const defaultTopK = 10

// RankedItem is one candidate with its similarity score against the user's
// taste vector.
type RankedItem struct {
	Item  *store.CandidateItem
	Score float32
}

// Rank orders candidates by cosine similarity to the taste vector, descending,
// and returns the top k. k <= 0 means the default of 10. Ties keep their input
// order.
func Rank(taste []float32, candidates []EmbeddedItem, k int) []RankedItem {
	if k <= 0 {
		k = defaultTopK
	}
	ranked := make([]RankedItem, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, RankedItem{
			Item:  c.Item,
			Score: cosineSimilarity(taste, c.Vector),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
