package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/artrec/hunterd/store"
)

func (d *DB) CreateUserEmbedding(ctx context.Context, create *store.UserEmbedding) (*store.UserEmbedding, error) {
	vector, err := vectorToJSON(create.Vector)
	if err != nil {
		return nil, err
	}

	stmt := `
		INSERT INTO user_embedding (uuid, embedding, version, applied_swipes, updated_ts)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = d.db.ExecContext(ctx, stmt,
		create.UUID,
		vector,
		create.Version,
		create.AppliedSwipes,
		create.UpdatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user embedding")
	}

	return create, nil
}

func (d *DB) GetUserEmbedding(ctx context.Context, find *store.FindUserEmbedding) (*store.UserEmbedding, error) {
	query := `
		SELECT uuid, embedding, version, applied_swipes, updated_ts
		FROM user_embedding
		WHERE uuid = ?
	`

	var embedding store.UserEmbedding
	var vector string
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
	if embedding.Vector, err = vectorFromJSON(vector); err != nil {
		return nil, err
	}

	return &embedding, nil
}

// UpdateUserEmbedding performs the optimistic version-checked write. A
// zero-row result means another writer advanced the version first.
func (d *DB) UpdateUserEmbedding(ctx context.Context, update *store.UpdateUserEmbedding) (*store.UserEmbedding, error) {
	vector, err := vectorToJSON(update.Vector)
	if err != nil {
		return nil, err
	}

	stmt := `
		UPDATE user_embedding
		SET embedding = ?, version = version + 1, applied_swipes = ?, updated_ts = ?
		WHERE uuid = ? AND version = ?
	`

	result, err := d.db.ExecContext(ctx, stmt,
		vector,
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
