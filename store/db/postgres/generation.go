package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/artrec/hunterd/store"
)

// UpsertGenerationStatus inserts or updates the per-user generation record.
func (d *DB) UpsertGenerationStatus(ctx context.Context, upsert *store.GenerationStatus) (*store.GenerationStatus, error) {
	stmt := `
		INSERT INTO generation_status (uuid, state, stored_count, updated_ts)
		VALUES (` + placeholders(4) + `)
		ON CONFLICT (uuid)
		DO UPDATE SET
			state = EXCLUDED.state,
			stored_count = EXCLUDED.stored_count,
			updated_ts = EXCLUDED.updated_ts
	`

	_, err := d.db.ExecContext(ctx, stmt,
		upsert.UUID,
		string(upsert.State),
		upsert.StoredCount,
		upsert.UpdatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert generation status")
	}

	return upsert, nil
}

// GetGenerationStatus gets the generation record, or nil.
func (d *DB) GetGenerationStatus(ctx context.Context, userUUID string) (*store.GenerationStatus, error) {
	query := `
		SELECT uuid, state, stored_count, updated_ts
		FROM generation_status
		WHERE uuid = ` + placeholder(1)

	var status store.GenerationStatus
	var state string
	err := d.db.QueryRowContext(ctx, query, userUUID).Scan(
		&status.UUID,
		&state,
		&status.StoredCount,
		&status.UpdatedTs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get generation status")
	}
	status.State = store.GenerationState(state)

	return &status, nil
}
