package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/artrec/hunterd/store"
)

const (
	likeWeight    = float32(0.1)
	dislikeWeight = float32(0.05)
)

// Feedback is one signed swipe signal for the update rule.
type Feedback struct {
	Vector []float32
	Liked  bool
}

// Update applies the additive preference rule to the current taste vector:
// liked vectors pull it closer, disliked vectors push it away, and the result
// is re-normalized to the unit sphere. Empty feedback returns the input
// unchanged.
func Update(current []float32, feedback []Feedback) ([]float32, error) {
	if len(feedback) == 0 {
		return current, nil
	}
	next := make([]float32, len(current))
	copy(next, current)
	for _, f := range feedback {
		if len(f.Vector) != len(current) {
			return nil, fmt.Errorf("feedback dimension %d does not match taste vector dimension %d", len(f.Vector), len(current))
		}
		weight := likeWeight
		if !f.Liked {
			weight = -dislikeWeight
		}
		for i, x := range f.Vector {
			next[i] += weight * x
		}
	}
	return normalize(next)
}

// Updater folds accumulated swipes into the stored taste vector.
type Updater struct {
	store    *store.Store
	embedder EmbeddingService
}

func NewUpdater(st *store.Store, embedder EmbeddingService) *Updater {
	return &Updater{store: st, embedder: embedder}
}

// UpdateFromLedger replays the swipes beyond the embedding's applied cursor,
// in swipe order, and writes the updated vector back with an optimistic
// version check. A concurrent writer surfaces as ErrStaleVersion so the
// caller can re-read and retry.
//
// Swipes whose item embedding is missing still advance the cursor. Replaying
// them later would fold them against a taste vector they did not shape, so
// they are logged and dropped instead.
func (u *Updater) UpdateFromLedger(ctx context.Context, uuid string) error {
	emb, err := u.store.GetUserEmbedding(ctx, &store.FindUserEmbedding{UUID: uuid})
	if err != nil {
		return err
	}
	if emb == nil {
		return fmt.Errorf("no taste vector for user %s", uuid)
	}

	edges, err := u.store.ListSwipedEdges(ctx, uuid)
	if err != nil {
		return err
	}
	if int(emb.AppliedSwipes) >= len(edges) {
		return nil
	}
	unapplied := edges[emb.AppliedSwipes:]

	itemIDs := make([]string, 0, len(unapplied))
	for _, edge := range unapplied {
		itemIDs = append(itemIDs, edge.ItemID)
	}
	model := u.embedder.Model()
	stored, err := u.store.ListItemEmbeddings(ctx, &store.FindItemEmbedding{ItemIDs: itemIDs, Model: &model})
	if err != nil {
		return err
	}
	vectors := make(map[string][]float32, len(stored))
	for _, ie := range stored {
		vectors[ie.ItemID] = ie.Vector
	}

	feedback := make([]Feedback, 0, len(unapplied))
	for _, edge := range unapplied {
		vector, ok := vectors[edge.ItemID]
		if !ok {
			slog.Warn("swipe skipped in taste update, item embedding missing",
				slog.String("uuid", uuid),
				slog.String("item_id", edge.ItemID))
			continue
		}
		feedback = append(feedback, Feedback{Vector: vector, Liked: edge.Status.IsLiked()})
	}

	next, err := Update(emb.Vector, feedback)
	if err != nil {
		return err
	}

	_, err = u.store.UpdateUserEmbedding(ctx, &store.UpdateUserEmbedding{
		UUID:            uuid,
		Vector:          next,
		ExpectedVersion: emb.Version,
		AppliedSwipes:   int32(len(edges)),
		UpdatedTs:       time.Now().Unix(),
	})
	if errors.Is(err, store.ErrVersionConflict) {
		return ErrStaleVersion
	}
	return err
}
