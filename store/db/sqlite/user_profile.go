package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/artrec/hunterd/store"
)

func (d *DB) UpsertUserProfile(ctx context.Context, upsert *store.UserProfile) (*store.UserProfile, error) {
	favorites, err := stringsToJSON(upsert.PastFavoriteWork)
	if err != nil {
		return nil, err
	}
	obsessions, err := stringsToJSON(upsert.CurrentObsession)
	if err != nil {
		return nil, err
	}

	stmt := `
		INSERT INTO user_profile (uuid, taste_genre, past_favorite_work, current_obsession, state_of_mind, future_aspirations, complete)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (uuid)
		DO UPDATE SET
			taste_genre = EXCLUDED.taste_genre,
			past_favorite_work = EXCLUDED.past_favorite_work,
			current_obsession = EXCLUDED.current_obsession,
			state_of_mind = EXCLUDED.state_of_mind,
			future_aspirations = EXCLUDED.future_aspirations,
			complete = EXCLUDED.complete
	`

	_, err = d.db.ExecContext(ctx, stmt,
		upsert.UUID,
		upsert.TasteGenre,
		favorites,
		obsessions,
		upsert.StateOfMind,
		upsert.FutureAspirations,
		upsert.Complete,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert user profile")
	}

	return upsert, nil
}

func (d *DB) GetUserProfile(ctx context.Context, find *store.FindUserProfile) (*store.UserProfile, error) {
	query := `
		SELECT uuid, taste_genre, past_favorite_work, current_obsession, state_of_mind, future_aspirations, complete
		FROM user_profile
		WHERE uuid = ?
	`

	var userProfile store.UserProfile
	var favorites, obsessions string
	err := d.db.QueryRowContext(ctx, query, find.UUID).Scan(
		&userProfile.UUID,
		&userProfile.TasteGenre,
		&favorites,
		&obsessions,
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

	if userProfile.PastFavoriteWork, err = stringsFromJSON(favorites); err != nil {
		return nil, err
	}
	if userProfile.CurrentObsession, err = stringsFromJSON(obsessions); err != nil {
		return nil, err
	}

	return &userProfile, nil
}
