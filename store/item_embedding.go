package store

import "context"

// ItemEmbedding is the vector embedding of a catalog item. Computed lazily and
// reusable across users once computed.
type ItemEmbedding struct {
	ItemID    string
	Model     string
	Vector    []float32
	CreatedTs int64
}

// FindItemEmbedding is the find condition for item embeddings.
type FindItemEmbedding struct {
	ItemID  *string
	ItemIDs []string
	Model   *string
}

func (s *Store) UpsertItemEmbedding(ctx context.Context, upsert *ItemEmbedding) (*ItemEmbedding, error) {
	return s.driver.UpsertItemEmbedding(ctx, upsert)
}

// GetItemEmbedding gets the embedding of a specific item for a model, or nil.
func (s *Store) GetItemEmbedding(ctx context.Context, itemID string, model string) (*ItemEmbedding, error) {
	list, err := s.driver.ListItemEmbeddings(ctx, &FindItemEmbedding{
		ItemID: &itemID,
		Model:  &model,
	})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListItemEmbeddings(ctx context.Context, find *FindItemEmbedding) ([]*ItemEmbedding, error) {
	return s.driver.ListItemEmbeddings(ctx, find)
}
