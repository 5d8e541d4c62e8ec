package engine

import (
	"context"
	"crypto/sha256"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/artrec/hunterd/internal/profile"
	"github.com/artrec/hunterd/search"
	"github.com/artrec/hunterd/store"
	"github.com/artrec/hunterd/store/db/sqlite"
)

const testUUID = "a7c9e1f3-4b6d-42a8-9c1e-5d7f8a9b0c1d"

// fakeEmbedder derives deterministic unit vectors from the text itself, so
// identical texts always embed identically without a backend.
type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		digest := sha256.Sum256([]byte(text))
		vec := make([]float32, 4)
		for j := range vec {
			vec[j] = float32(digest[j]) + 1
		}
		normalized, err := normalize(vec)
		if err != nil {
			return nil, err
		}
		out[i] = normalized
	}
	return out, nil
}

func (f *fakeEmbedder) Model() string   { return "fake-model" }
func (f *fakeEmbedder) Dimensions() int { return 4 }

func newTestService(t *testing.T, perDomain int) (*Service, *store.Store) {
	t.Helper()
	p := &profile.Profile{
		Mode:                "dev",
		Driver:              "sqlite",
		DSN:                 filepath.Join(t.TempDir(), "hunterd_test.db"),
		EmbeddingDimensions: 4,
		AggregateWorkers:    2,
		PerDomainLimit:      20,
		PoolSize:            100,
	}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	st := store.New(driver, p)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	registry := search.NewRegistry()
	for _, domain := range store.Domains {
		registry.Register(domain, &fakeAdapter{
			name:    string(domain),
			results: fakeResults(string(domain), perDomain),
		})
	}

	embedder := &fakeEmbedder{}
	svc := &Service{
		store:      st,
		profile:    p,
		embedder:   embedder,
		profileVec: NewProfileVectorizer(st, embedder),
		itemVec:    NewItemVectorizer(st, embedder),
		aggregator: NewAggregator(registry, p.PerDomainLimit, p.PoolSize, p.AggregateWorkers),
		updater:    NewUpdater(st, embedder),
	}
	return svc, st
}

func seedProfile(t *testing.T, st *store.Store) {
	t.Helper()
	_, err := st.UpsertUserProfile(context.Background(), &store.UserProfile{
		UUID:              testUUID,
		TasteGenre:        "science fiction",
		PastFavoriteWork:  []string{"Dune"},
		CurrentObsession:  []string{"space opera"},
		StateOfMind:       "curious",
		FutureAspirations: "write a novel",
		Complete:          true,
	})
	require.NoError(t, err)
}

func TestGenerateCandidatesRequiresCompleteProfile(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, 2)

	_, err := svc.GenerateCandidates(ctx, testUUID)
	require.ErrorIs(t, err, ErrProfileIncomplete)

	_, err = st.UpsertUserProfile(ctx, &store.UserProfile{UUID: testUUID, TasteGenre: "jazz"})
	require.NoError(t, err)
	_, err = svc.GenerateCandidates(ctx, testUUID)
	require.ErrorIs(t, err, ErrProfileIncomplete)
}

func TestGenerateCandidatesFullPipeline(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, 2)
	seedProfile(t, st)

	report, err := svc.GenerateCandidates(ctx, testUUID)
	require.NoError(t, err)
	require.NotEmpty(t, report.ReportID)
	require.Equal(t, 2*len(store.Domains), report.StoredCount)
	require.Len(t, report.Domains, len(store.Domains))

	status, err := svc.GenerationStatus(ctx, testUUID)
	require.NoError(t, err)
	require.Equal(t, store.GenerationComplete, status.State)
	require.EqualValues(t, report.StoredCount, status.StoredCount)

	emb, err := st.GetUserEmbedding(ctx, &store.FindUserEmbedding{UUID: testUUID})
	require.NoError(t, err)
	require.NotNil(t, emb)
	require.EqualValues(t, 1, emb.Version)

	edges, err := st.ListUserItemEdges(ctx, &store.FindUserItemEdge{UUID: testUUID})
	require.NoError(t, err)
	require.Len(t, edges, report.StoredCount)
	for _, edge := range edges {
		require.Equal(t, store.StatusCandidate, edge.Status)
	}
}

func TestGenerateCandidatesIdempotentForSwipes(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, 2)
	seedProfile(t, st)

	report, err := svc.GenerateCandidates(ctx, testUUID)
	require.NoError(t, err)

	edges, err := st.ListUserItemEdges(ctx, &store.FindUserItemEdge{UUID: testUUID})
	require.NoError(t, err)
	swipedID := edges[0].ItemID
	_, err = st.UpdateUserItemStatus(ctx, testUUID, swipedID, store.StatusSwipeRight)
	require.NoError(t, err)

	// Regeneration re-discovers the same items and must not reset the swipe.
	again, err := svc.GenerateCandidates(ctx, testUUID)
	require.NoError(t, err)
	require.Equal(t, report.StoredCount, again.StoredCount)

	reread, err := st.ListUserItemEdges(ctx, &store.FindUserItemEdge{UUID: testUUID, ItemID: &swipedID})
	require.NoError(t, err)
	require.Len(t, reread, 1)
	require.Equal(t, store.StatusSwipeRight, reread[0].Status)
}

func TestServingColdStartThenPersonalized(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 2)
	st := svc.store
	seedProfile(t, st)

	onboarding, err := svc.RankedCandidates(ctx, testUUID, 10)
	require.NoError(t, err)
	require.Equal(t, Onboarding, onboarding.State)
	require.Empty(t, onboarding.Items)

	_, err = svc.GenerateCandidates(ctx, testUUID)
	require.NoError(t, err)

	cold, err := svc.RankedCandidates(ctx, testUUID, 10)
	require.NoError(t, err)
	require.Equal(t, ColdStartServing, cold.State)
	require.Len(t, cold.Items, 10)
	for _, item := range cold.Items {
		require.Zero(t, item.Score)
	}

	// Five swipes cross the personalization threshold.
	var lastAck *FeedbackAck
	for i, item := range cold.Items[:5] {
		lastAck, err = svc.RecordFeedback(ctx, testUUID, item.Item.ItemID, i%2 == 0)
		require.NoError(t, err)
	}
	require.True(t, lastAck.SwipesComplete)
	require.True(t, lastAck.PlanReady)
	require.False(t, lastAck.TrainingComplete)
	require.EqualValues(t, 5, lastAck.TotalSwipes)
	require.EqualValues(t, 3, lastAck.RightSwipes)

	// The fold ran: version advanced and the cursor covers all five swipes.
	emb, err := st.GetUserEmbedding(ctx, &store.FindUserEmbedding{UUID: testUUID})
	require.NoError(t, err)
	require.EqualValues(t, 2, emb.Version)
	require.EqualValues(t, 5, emb.AppliedSwipes)

	personalized, err := svc.RankedCandidates(ctx, testUUID, 10)
	require.NoError(t, err)
	require.Equal(t, ActiveLearning, personalized.State)
	require.NotEmpty(t, personalized.Items)

	swiped := map[string]bool{}
	for _, item := range cold.Items[:5] {
		swiped[item.Item.ItemID] = true
	}
	for i, ranked := range personalized.Items {
		require.False(t, swiped[ranked.Item.ItemID])
		if i > 0 {
			require.GreaterOrEqual(t, personalized.Items[i-1].Score, ranked.Score)
		}
	}
}

func TestRecordFeedbackConcurrentSwipesSignalPlanOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 2)
	st := svc.store
	seedProfile(t, st)

	_, err := svc.GenerateCandidates(ctx, testUUID)
	require.NoError(t, err)

	edges, err := st.ListUserItemEdges(ctx, &store.FindUserItemEdge{UUID: testUUID})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err = svc.RecordFeedback(ctx, testUUID, edges[i].ItemID, true)
		require.NoError(t, err)
	}

	// Swipes five and six land concurrently. Each ack must report the total
	// count its own transaction committed, so exactly one of them crosses the
	// personalization threshold no matter how the stats reads interleave.
	acks := make([]*FeedbackAck, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acks[i], errs[i] = svc.RecordFeedback(ctx, testUUID, edges[4+i].ItemID, false)
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	totals := []int32{acks[0].TotalSwipes, acks[1].TotalSwipes}
	require.ElementsMatch(t, []int32{5, 6}, totals)
	planReady := 0
	for _, ack := range acks {
		require.True(t, ack.SwipesComplete)
		if ack.PlanReady {
			planReady++
		}
	}
	require.Equal(t, 1, planReady)
}

func TestUpdateFromLedgerNoopWithoutNewSwipes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 2)
	st := svc.store
	seedProfile(t, st)

	_, err := svc.GenerateCandidates(ctx, testUUID)
	require.NoError(t, err)

	edges, err := st.ListUserItemEdges(ctx, &store.FindUserItemEdge{UUID: testUUID})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = svc.RecordFeedback(ctx, testUUID, edges[i].ItemID, i%2 == 0)
		require.NoError(t, err)
	}

	folded, err := st.GetUserEmbedding(ctx, &store.FindUserEmbedding{UUID: testUUID})
	require.NoError(t, err)
	require.EqualValues(t, 2, folded.Version)
	require.EqualValues(t, 5, folded.AppliedSwipes)

	// Re-running the fold with no new swipes must not touch the vector: the
	// cursor already covers the whole ledger.
	require.NoError(t, svc.updater.UpdateFromLedger(ctx, testUUID))
	require.NoError(t, svc.updater.UpdateFromLedger(ctx, testUUID))

	after, err := st.GetUserEmbedding(ctx, &store.FindUserEmbedding{UUID: testUUID})
	require.NoError(t, err)
	require.EqualValues(t, 2, after.Version)
	require.EqualValues(t, 5, after.AppliedSwipes)
	require.Equal(t, folded.Vector, after.Vector)
}

func TestRecordFeedbackAcceptsSourceURL(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 2)
	st := svc.store
	seedProfile(t, st)

	_, err := svc.GenerateCandidates(ctx, testUUID)
	require.NoError(t, err)

	sourceURL := "https://example.com/books/0"
	ack, err := svc.RecordFeedback(ctx, testUUID, sourceURL, true)
	require.NoError(t, err)
	require.Equal(t, ItemID(sourceURL), ack.ItemID)
}

func TestRecordFeedbackRejectsDoubleSwipe(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 2)
	st := svc.store
	seedProfile(t, st)

	_, err := svc.GenerateCandidates(ctx, testUUID)
	require.NoError(t, err)

	edges, err := st.ListUserItemEdges(ctx, &store.FindUserItemEdge{UUID: testUUID})
	require.NoError(t, err)
	itemID := edges[0].ItemID

	_, err = svc.RecordFeedback(ctx, testUUID, itemID, true)
	require.NoError(t, err)
	_, err = svc.RecordFeedback(ctx, testUUID, itemID, false)
	require.ErrorIs(t, err, store.ErrInvalidTransition)
}

func TestTrainingCompleteAfterThirtyRightSwipes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 5)
	st := svc.store
	seedProfile(t, st)

	_, err := svc.GenerateCandidates(ctx, testUUID)
	require.NoError(t, err)

	edges, err := st.ListUserItemEdges(ctx, &store.FindUserItemEdge{UUID: testUUID})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(edges), 30)

	var ack *FeedbackAck
	for i := 0; i < 30; i++ {
		ack, err = svc.RecordFeedback(ctx, testUUID, edges[i].ItemID, true)
		require.NoError(t, err, "swipe %d", i)
	}
	require.True(t, ack.TrainingComplete)
	require.EqualValues(t, 30, ack.RightSwipes)

	done, err := svc.RankedCandidates(ctx, testUUID, 10)
	require.NoError(t, err)
	require.Equal(t, TrainingComplete, done.State)
	require.Empty(t, done.Items)
}

func TestGenerationStatusPendingByDefault(t *testing.T) {
	svc, _ := newTestService(t, 2)
	status, err := svc.GenerationStatus(context.Background(), testUUID)
	require.NoError(t, err)
	require.Equal(t, store.GenerationPending, status.State)
}
