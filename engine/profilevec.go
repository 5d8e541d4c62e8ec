package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/artrec/hunterd/store"
)

// ProfileVectorizer turns a structured taste profile into the initial user
// embedding.
type ProfileVectorizer struct {
	store    *store.Store
	embedder EmbeddingService
}

func NewProfileVectorizer(st *store.Store, embedder EmbeddingService) *ProfileVectorizer {
	return &ProfileVectorizer{store: st, embedder: embedder}
}

// ProfileText synthesizes one descriptive string from the profile fields in a
// fixed order, skipping empty fields. The mapping is deterministic: identical
// profiles always produce identical text.
func ProfileText(p *store.UserProfile) string {
	segments := make([]string, 0, 5)
	if len(p.PastFavoriteWork) > 0 {
		segments = append(segments, "Past favorites: "+strings.Join(p.PastFavoriteWork, ", "))
	}
	if p.TasteGenre != "" {
		segments = append(segments, "Genre: "+p.TasteGenre)
	}
	if len(p.CurrentObsession) > 0 {
		segments = append(segments, "Current obsession: "+strings.Join(p.CurrentObsession, ", "))
	}
	if p.StateOfMind != "" {
		segments = append(segments, "Current state of mind: "+p.StateOfMind)
	}
	if p.FutureAspirations != "" {
		segments = append(segments, "Future aspirations: "+p.FutureAspirations)
	}
	return strings.Join(segments, ". ")
}

// Vectorize embeds the profile. With persist=true an already stored user
// embedding is returned unchanged (the stored vector is the evolving taste
// state and must not be reset by re-vectorization), and a freshly computed
// vector is stored as version 1.
//
// A backend failure is surfaced as ErrEmbeddingBackend. There is no fallback
// vector: serving a random embedding would silently produce meaningless
// recommendations.
func (v *ProfileVectorizer) Vectorize(ctx context.Context, p *store.UserProfile, persist bool) ([]float32, error) {
	if persist {
		stored, err := v.store.GetUserEmbedding(ctx, &store.FindUserEmbedding{UUID: p.UUID})
		if err != nil {
			return nil, err
		}
		if stored != nil {
			return stored.Vector, nil
		}
	}

	text := ProfileText(p)
	if text == "" {
		return nil, fmt.Errorf("%w: profile has no embeddable fields", ErrProfileIncomplete)
	}

	vector, err := v.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	vector, err = normalize(vector)
	if err != nil {
		return nil, err
	}

	if persist {
		if _, err := v.store.CreateUserEmbedding(ctx, &store.UserEmbedding{
			UUID:      p.UUID,
			Vector:    vector,
			UpdatedTs: time.Now().Unix(),
		}); err != nil {
			return nil, err
		}
	}

	return vector, nil
}
