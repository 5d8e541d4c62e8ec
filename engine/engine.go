// Package engine implements the recommendation loop: candidate generation,
// taste vector maintenance, similarity ranking, and the swipe feedback ledger.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/artrec/hunterd/engine/metrics"
	"github.com/artrec/hunterd/internal/profile"
	"github.com/artrec/hunterd/search"
	"github.com/artrec/hunterd/store"
)

// staleRetries caps how many times a feedback fold is retried after losing an
// optimistic version race.
const staleRetries = 3

// Service wires the engine components behind one facade used by the API layer.
type Service struct {
	store    *store.Store
	profile  *profile.Profile
	embedder EmbeddingService

	profileVec *ProfileVectorizer
	itemVec    *ItemVectorizer
	aggregator *Aggregator
	updater    *Updater
	exporter   *metrics.PrometheusExporter
}

// NewService builds the engine from its configuration. The exporter may be nil
// when metrics are disabled.
func NewService(st *store.Store, p *profile.Profile, registry *search.Registry, exporter *metrics.PrometheusExporter) (*Service, error) {
	embedder, err := NewEmbeddingService(p)
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		embedder = newInstrumentedEmbedder(embedder, exporter)
	}
	return &Service{
		store:      st,
		profile:    p,
		embedder:   embedder,
		profileVec: NewProfileVectorizer(st, embedder),
		itemVec:    NewItemVectorizer(st, embedder),
		aggregator: NewAggregator(registry, p.PerDomainLimit, p.PoolSize, p.AggregateWorkers),
		updater:    NewUpdater(st, embedder),
		exporter:   exporter,
	}, nil
}

// GenerationReport summarizes one candidate generation run.
type GenerationReport struct {
	ReportID    string         `json:"report_id"`
	UUID        string         `json:"uuid"`
	StoredCount int            `json:"stored_count"`
	Domains     []DomainReport `json:"domains"`
}

// GenerateCandidates builds the full candidate pool for a user: profile
// vectorization, domain search fan-out, item embedding, and ledger seeding.
// Safe to call again; re-discovered items keep their existing swipe state.
func (s *Service) GenerateCandidates(ctx context.Context, uuid string) (*GenerationReport, error) {
	start := time.Now()
	report, err := s.generateCandidates(ctx, uuid)
	if s.exporter != nil {
		stored := 0
		if report != nil {
			stored = report.StoredCount
		}
		s.exporter.RecordGeneration(time.Since(start), stored, err == nil)
	}
	if err != nil {
		s.markGenerationFailed(uuid)
	}
	return report, err
}

func (s *Service) generateCandidates(ctx context.Context, uuid string) (*GenerationReport, error) {
	userProfile, err := s.store.GetUserProfile(ctx, &store.FindUserProfile{UUID: uuid})
	if err != nil {
		return nil, err
	}
	if userProfile == nil || !userProfile.Complete {
		return nil, fmt.Errorf("%w: user %s", ErrProfileIncomplete, uuid)
	}

	if _, err := s.store.UpsertGenerationStatus(ctx, &store.GenerationStatus{
		UUID:      uuid,
		State:     store.GenerationRunning,
		UpdatedTs: time.Now().Unix(),
	}); err != nil {
		return nil, err
	}

	if _, err := s.profileVec.Vectorize(ctx, userProfile, true); err != nil {
		return nil, err
	}

	pool, domainReports, err := s.aggregator.AggregateAll(ctx, userProfile)
	if err != nil {
		return nil, err
	}
	if s.exporter != nil {
		for _, r := range domainReports {
			if r.Err != "" {
				s.exporter.RecordSearchError(string(r.Domain))
			}
		}
	}

	embedded, err := s.itemVec.VectorizeBatch(ctx, pool, true)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	for _, e := range embedded {
		if _, err := s.store.UpsertCandidateItem(ctx, e.Item); err != nil {
			return nil, err
		}
		if _, err := s.store.UpsertUserItemEdge(ctx, &store.UserItemEdge{
			UUID:      uuid,
			ItemID:    e.Item.ItemID,
			Status:    store.StatusCandidate,
			CreatedTs: now,
			UpdatedTs: now,
		}); err != nil {
			return nil, err
		}
	}

	if _, err := s.store.UpsertGenerationStatus(ctx, &store.GenerationStatus{
		UUID:        uuid,
		State:       store.GenerationComplete,
		StoredCount: int32(len(embedded)),
		UpdatedTs:   time.Now().Unix(),
	}); err != nil {
		return nil, err
	}

	report := &GenerationReport{
		ReportID:    shortuuid.New(),
		UUID:        uuid,
		StoredCount: len(embedded),
		Domains:     domainReports,
	}
	slog.Info("candidate generation complete",
		slog.String("uuid", uuid),
		slog.String("report_id", report.ReportID),
		slog.Int("stored", report.StoredCount))
	return report, nil
}

func (s *Service) markGenerationFailed(uuid string) {
	// Detached context: the request context is usually already canceled or
	// exhausted when generation fails.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.store.UpsertGenerationStatus(ctx, &store.GenerationStatus{
		UUID:      uuid,
		State:     store.GenerationFailed,
		UpdatedTs: time.Now().Unix(),
	}); err != nil {
		slog.Error("failed to persist generation failure",
			slog.String("uuid", uuid),
			slog.String("error", err.Error()))
	}
}

// GenerationStatus returns the persisted generation record, pending when the
// user has never triggered generation.
func (s *Service) GenerationStatus(ctx context.Context, uuid string) (*store.GenerationStatus, error) {
	status, err := s.store.GetGenerationStatus(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return &store.GenerationStatus{UUID: uuid, State: store.GenerationPending}, nil
	}
	return status, nil
}

// CandidateBatch is one serving response: the items to show next and the
// serving state they were chosen under.
type CandidateBatch struct {
	State ServingState `json:"state"`
	Items []RankedItem `json:"items"`
}

// RankedCandidates returns the next batch of unreviewed candidates. Before the
// personalization threshold the pool order is served as-is; after it,
// candidates are ranked by similarity to the taste vector. Once training is
// complete the batch is empty.
func (s *Service) RankedCandidates(ctx context.Context, uuid string, limit int) (*CandidateBatch, error) {
	stats, err := s.store.GetSwipeStats(ctx, uuid)
	if err != nil {
		return nil, err
	}

	edges, err := s.store.ListUserItemEdges(ctx, &store.FindUserItemEdge{UUID: uuid})
	if err != nil {
		return nil, err
	}

	state := Evaluate(stats, len(edges) > 0)
	if state == TrainingComplete {
		return &CandidateBatch{State: state, Items: []RankedItem{}}, nil
	}

	itemIDs := make([]string, 0, len(edges))
	for _, edge := range edges {
		if edge.Status == store.StatusCandidate {
			itemIDs = append(itemIDs, edge.ItemID)
		}
	}
	if len(itemIDs) == 0 {
		return &CandidateBatch{State: state, Items: []RankedItem{}}, nil
	}

	items, err := s.store.ListCandidateItems(ctx, &store.FindCandidateItem{ItemIDs: itemIDs})
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopK
	}

	if !state.Personalized() {
		if len(items) > limit {
			items = items[:limit]
		}
		batch := &CandidateBatch{State: state, Items: make([]RankedItem, 0, len(items))}
		for _, item := range items {
			batch.Items = append(batch.Items, RankedItem{Item: item})
		}
		return batch, nil
	}

	emb, err := s.store.GetUserEmbedding(ctx, &store.FindUserEmbedding{UUID: uuid})
	if err != nil {
		return nil, err
	}
	if emb == nil {
		return nil, fmt.Errorf("no taste vector for user %s", uuid)
	}

	model := s.embedder.Model()
	stored, err := s.store.ListItemEmbeddings(ctx, &store.FindItemEmbedding{ItemIDs: itemIDs, Model: &model})
	if err != nil {
		return nil, err
	}
	vectors := make(map[string][]float32, len(stored))
	for _, ie := range stored {
		vectors[ie.ItemID] = ie.Vector
	}

	embedded := make([]EmbeddedItem, 0, len(items))
	for _, item := range items {
		vector, ok := vectors[item.ItemID]
		if !ok {
			continue
		}
		embedded = append(embedded, EmbeddedItem{Item: item, Vector: vector})
	}

	return &CandidateBatch{State: state, Items: Rank(emb.Vector, embedded, limit)}, nil
}

// FeedbackAck is the response to one recorded swipe. PlanReady fires exactly
// once, on the swipe that crosses the personalization threshold.
type FeedbackAck struct {
	UUID             string `json:"uuid"`
	ItemID           string `json:"item_id"`
	TotalSwipes      int32  `json:"total_swipes"`
	RightSwipes      int32  `json:"right_swipes"`
	SwipesComplete   bool   `json:"swipes_complete"`
	PlanReady        bool   `json:"plan_ready"`
	TrainingComplete bool   `json:"training_complete"`
}

// RecordFeedback applies one swipe to the ledger and, when a batch boundary is
// reached, folds accumulated swipes into the taste vector. itemID may be a raw
// source URL, in which case it is hashed into the catalog key first.
func (s *Service) RecordFeedback(ctx context.Context, uuid, itemID string, liked bool) (*FeedbackAck, error) {
	if strings.HasPrefix(itemID, "http://") || strings.HasPrefix(itemID, "https://") {
		itemID = ItemID(itemID)
	}

	status := store.StatusSwipeLeft
	direction := "left"
	if liked {
		status = store.StatusSwipeRight
		direction = "right"
	}
	edge, err := s.store.UpdateUserItemStatus(ctx, uuid, itemID, status)
	if err != nil {
		return nil, err
	}
	if s.exporter != nil {
		s.exporter.RecordSwipe(direction)
	}

	// SwipeSeq is the total swipe count as of this edge's own transaction, so
	// every threshold decision sees its own swipe exactly once even when swipes
	// from the same user land concurrently.
	total := edge.SwipeSeq

	if UpdateDue(total) {
		if err := s.foldWithRetry(ctx, uuid); err != nil {
			// The swipe itself is durable; the fold will catch up at the
			// next batch boundary.
			slog.Warn("taste vector update failed",
				slog.String("uuid", uuid),
				slog.String("error", err.Error()))
		}
	}

	stats, err := s.store.GetSwipeStats(ctx, uuid)
	if err != nil {
		return nil, err
	}

	return &FeedbackAck{
		UUID:             uuid,
		ItemID:           itemID,
		TotalSwipes:      total,
		RightSwipes:      stats.RightSwipes,
		SwipesComplete:   total >= personalizationThreshold,
		PlanReady:        total == personalizationThreshold,
		TrainingComplete: stats.RightSwipes >= trainingCompleteRights,
	}, nil
}

func (s *Service) foldWithRetry(ctx context.Context, uuid string) error {
	var err error
	for attempt := 0; attempt < staleRetries; attempt++ {
		err = s.updater.UpdateFromLedger(ctx, uuid)
		if !errors.Is(err, ErrStaleVersion) {
			return err
		}
		if s.exporter != nil {
			s.exporter.RecordFoldConflict()
		}
	}
	return err
}
