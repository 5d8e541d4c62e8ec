package postgres

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/artrec/hunterd/store"
)

// CreateUserEmbedding inserts the initial embedding row for a user.
func (d *DB) CreateUserEmbedding(ctx context.Context, create *store.UserEmbedding) (*store.UserEmbedding, error) {
	stmt := `
		INSERT INTO user_embedding (uuid, embedding, version, applied_swipes, updated_ts)
		VALUES (` + placeholders(5) + `)
	`

	_, err := d.db.ExecContext(ctx, stmt,
		create.UUID,
		pgvector.NewVector(create.Vector),
		create.Version,
		create.AppliedSwipes,
		create.UpdatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user embedding")
	}

	return create, nil
}

// GetUserEmbedding gets the embedding row for a user.
func (d *DB) GetUserEmbedding(ctx context.Context, find *store.FindUserEmbedding) (*store.UserEmbedding, error) {
	query := `
		SELECT uuid, embedding, version, applied_swipes, updated_ts
		FROM user_embedding
		WHERE uuid = ` + placeholder(1)

	var embedding store.UserEmbedding
	var vector pgvector.Vector
	err := d.db.QueryRowContext(ctx, query, find.UUID).Scan(
		&embedding.UUID,
		&vector,
		&embedding.Version,
		&embedding.AppliedSwipes,
		&embedding.UpdatedTs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get user embedding")
	}
	embedding.Vector = vector.Slice()

	return &embedding, nil
}

// UpdateUserEmbedding performs the optimistic single-writer write: the update
// only lands when the stored version still equals ExpectedVersion. A zero-row
// result means another writer won the race.
func (d *DB) UpdateUserEmbedding(ctx context.Context, update *store.UpdateUserEmbedding) (*store.UserEmbedding, error) {
	stmt := `
		UPDATE user_embedding
		SET embedding = $1, version = version + 1, applied_swipes = $2, updated_ts = $3
		WHERE uuid = $4 AND version = $5
	`

	result, err := d.db.ExecContext(ctx, stmt,
		pgvector.NewVector(update.Vector),
		update.AppliedSwipes,
		update.UpdatedTs,
		update.UUID,
		update.ExpectedVersion,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update user embedding")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read rows affected")
	}
	if rows == 0 {
		return nil, store.ErrVersionConflict
	}

	return &store.UserEmbedding{
		UUID:          update.UUID,
		Vector:        update.Vector,
		Version:       update.ExpectedVersion + 1,
		AppliedSwipes: update.AppliedSwipes,
		UpdatedTs:     update.UpdatedTs,
	}, nil
}
