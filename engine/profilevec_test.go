package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/artrec/hunterd/store"
)

func TestProfileText(t *testing.T) {
	tests := []struct {
		name    string
		profile *store.UserProfile
		want    string
	}{
		{
			name:    "full profile",
			profile: testProfileFixture(),
			want: "Past favorites: Dune. Genre: science fiction. " +
				"Current obsession: space opera. Current state of mind: curious. " +
				"Future aspirations: write a novel",
		},
		{
			name:    "sparse profile",
			profile: &store.UserProfile{TasteGenre: "jazz"},
			want:    "Genre: jazz",
		},
		{
			name:    "empty profile",
			profile: &store.UserProfile{},
			want:    "",
		},
		{
			name: "multiple favorites joined",
			profile: &store.UserProfile{
				PastFavoriteWork: []string{"Dune", "Hyperion"},
			},
			want: "Past favorites: Dune, Hyperion",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ProfileText(tt.profile))
		})
	}
}

func TestVectorizeEmptyProfile(t *testing.T) {
	v := NewProfileVectorizer(nil, &fakeEmbedder{})
	_, err := v.Vectorize(context.Background(), &store.UserProfile{UUID: testUUID}, false)
	require.ErrorIs(t, err, ErrProfileIncomplete)
}

func TestVectorizeWithoutPersistIsPure(t *testing.T) {
	embedder := &fakeEmbedder{}
	v := NewProfileVectorizer(nil, embedder)

	first, err := v.Vectorize(context.Background(), testProfileFixture(), false)
	require.NoError(t, err)
	require.InDelta(t, 1.0, l2Norm(first), 1e-6)

	second, err := v.Vectorize(context.Background(), testProfileFixture(), false)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
