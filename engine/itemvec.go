package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/artrec/hunterd/store"
)

// embedChunkSize caps how many texts a single backend request carries.
const embedChunkSize = 16

// EmbeddedItem pairs a catalog item with its embedding vector.
type EmbeddedItem struct {
	Item   *store.CandidateItem
	Vector []float32
}

// ItemID derives the stable catalog key: the first 12 hex characters of the
// SHA-256 digest of the canonical source URL. The same URL discovered via
// different domain queries collapses to one catalog entry.
func ItemID(sourceURL string) string {
	digest := sha256.Sum256([]byte(sourceURL))
	return hex.EncodeToString(digest[:])[:12]
}

// MakeEmbeddingText synthesizes the embedding input for an item from its
// textual fields, omitting empty segments. Metadata pairs are appended in key
// order so the text is deterministic.
func MakeEmbeddingText(item *store.CandidateItem) string {
	parts := make([]string, 0, 5+len(item.Metadata))
	if item.Title != "" {
		parts = append(parts, item.Title)
	}
	if item.Description != "" {
		parts = append(parts, item.Description)
	}
	if item.Creator != "" {
		parts = append(parts, "By "+item.Creator)
	}
	if item.Domain != "" {
		parts = append(parts, "Category: "+string(item.Domain))
	}
	if item.ReleaseDate != "" {
		parts = append(parts, "Released: "+item.ReleaseDate)
	}
	keys := make([]string, 0, len(item.Metadata))
	for k := range item.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := item.Metadata[k]; v != "" {
			parts = append(parts, k+": "+v)
		}
	}
	return strings.Join(parts, ". ")
}

// ItemVectorizer computes embeddings for candidate items, reusing stored
// vectors from the shared catalog where possible.
type ItemVectorizer struct {
	store    *store.Store
	embedder EmbeddingService
}

func NewItemVectorizer(st *store.Store, embedder EmbeddingService) *ItemVectorizer {
	return &ItemVectorizer{store: st, embedder: embedder}
}

// VectorizeBatch derives item ids and embeddings for the batch. Items with an
// empty source URL (no stable id possible) or empty embedding text (no signal
// to embed) are skipped, not replaced with placeholders. Output preserves
// input order.
//
// With persist=true, embeddings already stored under the same item_id and
// model are reused instead of recomputed, and fresh ones are written back to
// the catalog.
func (v *ItemVectorizer) VectorizeBatch(ctx context.Context, items []*store.CandidateItem, persist bool) ([]EmbeddedItem, error) {
	type pending struct {
		item *store.CandidateItem
		text string
	}
	eligible := make([]pending, 0, len(items))
	for _, item := range items {
		if item.SourceURL == "" {
			continue
		}
		item.ItemID = ItemID(item.SourceURL)
		text := MakeEmbeddingText(item)
		if text == "" {
			continue
		}
		eligible = append(eligible, pending{item: item, text: text})
	}
	if len(eligible) == 0 {
		return []EmbeddedItem{}, nil
	}

	// Reuse stored embeddings before touching the backend.
	reused := map[string][]float32{}
	if persist {
		ids := make([]string, 0, len(eligible))
		for _, p := range eligible {
			ids = append(ids, p.item.ItemID)
		}
		model := v.embedder.Model()
		stored, err := v.store.ListItemEmbeddings(ctx, &store.FindItemEmbedding{ItemIDs: ids, Model: &model})
		if err != nil {
			return nil, err
		}
		for _, embedding := range stored {
			reused[embedding.ItemID] = embedding.Vector
		}
	}

	out := make([]EmbeddedItem, 0, len(eligible))
	batchTexts := make([]string, 0, embedChunkSize)
	batchIdx := make([]int, 0, embedChunkSize)

	flush := func() error {
		if len(batchTexts) == 0 {
			return nil
		}
		vectors, err := v.embedder.EmbedBatch(ctx, batchTexts)
		if err != nil {
			return err
		}
		if len(vectors) != len(batchTexts) {
			return fmt.Errorf("%w: got %d embeddings for %d texts", ErrEmbeddingBackend, len(vectors), len(batchTexts))
		}
		for i, idx := range batchIdx {
			vector, err := normalize(vectors[i])
			if err != nil {
				return err
			}
			out[idx].Vector = vector
			if persist {
				if _, err := v.store.UpsertItemEmbedding(ctx, &store.ItemEmbedding{
					ItemID:    out[idx].Item.ItemID,
					Model:     v.embedder.Model(),
					Vector:    vector,
					CreatedTs: time.Now().Unix(),
				}); err != nil {
					return err
				}
			}
		}
		batchTexts = batchTexts[:0]
		batchIdx = batchIdx[:0]
		return nil
	}

	for _, p := range eligible {
		out = append(out, EmbeddedItem{Item: p.item})
		if vector, ok := reused[p.item.ItemID]; ok {
			out[len(out)-1].Vector = vector
			continue
		}
		batchTexts = append(batchTexts, p.text)
		batchIdx = append(batchIdx, len(out)-1)
		if len(batchTexts) == embedChunkSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return out, nil
}
