package postgres

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/artrec/hunterd/store"
)

// UpsertCandidateItem inserts or updates a catalog item. The catalog is
// shared across users: the same source_url always collapses to one row.
func (d *DB) UpsertCandidateItem(ctx context.Context, upsert *store.CandidateItem) (*store.CandidateItem, error) {
	metadata, err := json.Marshal(upsert.Metadata)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal item metadata")
	}

	stmt := `
		INSERT INTO item (item_id, domain, title, description, creator, release_date, source_url, image_url, metadata, created_ts)
		VALUES (` + placeholders(10) + `)
		ON CONFLICT (item_id)
		DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			creator = EXCLUDED.creator,
			release_date = EXCLUDED.release_date,
			image_url = EXCLUDED.image_url,
			metadata = EXCLUDED.metadata
	`

	_, err = d.db.ExecContext(ctx, stmt,
		upsert.ItemID,
		string(upsert.Domain),
		upsert.Title,
		upsert.Description,
		upsert.Creator,
		upsert.ReleaseDate,
		upsert.SourceURL,
		upsert.ImageURL,
		metadata,
		upsert.CreatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert item")
	}

	return upsert, nil
}

// ListCandidateItems lists catalog items.
func (d *DB) ListCandidateItems(ctx context.Context, find *store.FindCandidateItem) ([]*store.CandidateItem, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ItemID != nil {
		where, args = append(where, "item_id = "+placeholder(len(args)+1)), append(args, *find.ItemID)
	}
	if len(find.ItemIDs) > 0 {
		where, args = append(where, "item_id = ANY("+placeholder(len(args)+1)+")"), append(args, pq.Array(find.ItemIDs))
	}
	if find.Domain != nil {
		where, args = append(where, "domain = "+placeholder(len(args)+1)), append(args, string(*find.Domain))
	}

	query := `
		SELECT item_id, domain, title, description, creator, release_date, source_url, image_url, metadata, created_ts
		FROM item
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC, item_id ASC
	`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list items")
	}
	defer rows.Close()

	list := []*store.CandidateItem{}
	for rows.Next() {
		var item store.CandidateItem
		var domain string
		var metadata []byte
		err := rows.Scan(
			&item.ItemID,
			&domain,
			&item.Title,
			&item.Description,
			&item.Creator,
			&item.ReleaseDate,
			&item.SourceURL,
			&item.ImageURL,
			&metadata,
			&item.CreatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan item")
		}
		item.Domain = store.Domain(domain)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &item.Metadata); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal item metadata")
			}
		}
		list = append(list, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
