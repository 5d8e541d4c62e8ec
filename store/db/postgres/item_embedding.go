package postgres

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/artrec/hunterd/store"
)

// UpsertItemEmbedding inserts or updates an item embedding.
func (d *DB) UpsertItemEmbedding(ctx context.Context, upsert *store.ItemEmbedding) (*store.ItemEmbedding, error) {
	stmt := `
		INSERT INTO item_embedding (item_id, model, embedding, created_ts)
		VALUES (` + placeholders(4) + `)
		ON CONFLICT (item_id, model)
		DO UPDATE SET embedding = EXCLUDED.embedding
	`

	_, err := d.db.ExecContext(ctx, stmt,
		upsert.ItemID,
		upsert.Model,
		pgvector.NewVector(upsert.Vector),
		upsert.CreatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert item embedding")
	}

	return upsert, nil
}

// ListItemEmbeddings lists item embeddings.
func (d *DB) ListItemEmbeddings(ctx context.Context, find *store.FindItemEmbedding) ([]*store.ItemEmbedding, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ItemID != nil {
		where, args = append(where, "item_id = "+placeholder(len(args)+1)), append(args, *find.ItemID)
	}
	if len(find.ItemIDs) > 0 {
		where, args = append(where, "item_id = ANY("+placeholder(len(args)+1)+")"), append(args, pq.Array(find.ItemIDs))
	}
	if find.Model != nil {
		where, args = append(where, "model = "+placeholder(len(args)+1)), append(args, *find.Model)
	}

	query := `
		SELECT item_id, model, embedding, created_ts
		FROM item_embedding
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC, item_id ASC
	`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list item embeddings")
	}
	defer rows.Close()

	list := []*store.ItemEmbedding{}
	for rows.Next() {
		var embedding store.ItemEmbedding
		var vector pgvector.Vector
		err := rows.Scan(
			&embedding.ItemID,
			&embedding.Model,
			&vector,
			&embedding.CreatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan item embedding")
		}
		embedding.Vector = vector.Slice()
		list = append(list, &embedding)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
