package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/artrec/hunterd/store"
)

// UpsertUserProfile inserts or replaces a user taste profile.
func (d *DB) UpsertUserProfile(ctx context.Context, upsert *store.UserProfile) (*store.UserProfile, error) {
	stmt := `
		INSERT INTO user_profile (uuid, taste_genre, past_favorite_work, current_obsession, state_of_mind, future_aspirations, complete)
		VALUES (` + placeholders(7) + `)
		ON CONFLICT (uuid)
		DO UPDATE SET
			taste_genre = EXCLUDED.taste_genre,
			past_favorite_work = EXCLUDED.past_favorite_work,
			current_obsession = EXCLUDED.current_obsession,
			state_of_mind = EXCLUDED.state_of_mind,
			future_aspirations = EXCLUDED.future_aspirations,
			complete = EXCLUDED.complete
	`

	_, err := d.db.ExecContext(ctx, stmt,
		upsert.UUID,
		upsert.TasteGenre,
		pq.Array(upsert.PastFavoriteWork),
		pq.Array(upsert.CurrentObsession),
		upsert.StateOfMind,
		upsert.FutureAspirations,
		upsert.Complete,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert user profile")
	}

	return upsert, nil
}

// GetUserProfile gets a user profile by uuid.
func (d *DB) GetUserProfile(ctx context.Context, find *store.FindUserProfile) (*store.UserProfile, error) {
	query := `
		SELECT uuid, taste_genre, past_favorite_work, current_obsession, state_of_mind, future_aspirations, complete
		FROM user_profile
		WHERE uuid = ` + placeholder(1)

	var userProfile store.UserProfile
	err := d.db.QueryRowContext(ctx, query, find.UUID).Scan(
		&userProfile.UUID,
		&userProfile.TasteGenre,
		pq.Array(&userProfile.PastFavoriteWork),
		pq.Array(&userProfile.CurrentObsession),
		&userProfile.StateOfMind,
		&userProfile.FutureAspirations,
		&userProfile.Complete,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get user profile")
	}

	return &userProfile, nil
}
