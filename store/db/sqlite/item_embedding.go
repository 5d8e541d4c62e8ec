package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/artrec/hunterd/store"
)

func (d *DB) UpsertItemEmbedding(ctx context.Context, upsert *store.ItemEmbedding) (*store.ItemEmbedding, error) {
	vector, err := vectorToJSON(upsert.Vector)
	if err != nil {
		return nil, err
	}

	stmt := `
		INSERT INTO item_embedding (item_id, model, embedding, created_ts)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (item_id, model)
		DO UPDATE SET embedding = EXCLUDED.embedding
	`

	_, err = d.db.ExecContext(ctx, stmt,
		upsert.ItemID,
		upsert.Model,
		vector,
		upsert.CreatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert item embedding")
	}

	return upsert, nil
}

func (d *DB) ListItemEmbeddings(ctx context.Context, find *store.FindItemEmbedding) ([]*store.ItemEmbedding, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ItemID != nil {
		where, args = append(where, "item_id = ?"), append(args, *find.ItemID)
	}
	if len(find.ItemIDs) > 0 {
		list := make([]string, len(find.ItemIDs))
		for i, id := range find.ItemIDs {
			list[i] = "?"
			args = append(args, id)
		}
		where = append(where, "item_id IN ("+strings.Join(list, ", ")+")")
	}
	if find.Model != nil {
		where, args = append(where, "model = ?"), append(args, *find.Model)
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
		var vector string
		err := rows.Scan(
			&embedding.ItemID,
			&embedding.Model,
			&vector,
			&embedding.CreatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan item embedding")
		}
		if embedding.Vector, err = vectorFromJSON(vector); err != nil {
			return nil, err
		}
		list = append(list, &embedding)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
