package store

import "context"

// UserProfile is the structured taste profile captured at onboarding.
// It is produced by the profiling dialogue upstream and is read-only here.
type UserProfile struct {
	UUID              string
	TasteGenre        string
	PastFavoriteWork  []string
	CurrentObsession  []string
	StateOfMind       string
	FutureAspirations string
	Complete          bool
}

// FindUserProfile is the find condition for user profiles.
type FindUserProfile struct {
	UUID string
}

func (s *Store) UpsertUserProfile(ctx context.Context, upsert *UserProfile) (*UserProfile, error) {
	return s.driver.UpsertUserProfile(ctx, upsert)
}

// GetUserProfile returns the profile for the given user, or nil when none exists.
func (s *Store) GetUserProfile(ctx context.Context, find *FindUserProfile) (*UserProfile, error) {
	return s.driver.GetUserProfile(ctx, find)
}
