package store

import (
	"context"

	"github.com/pkg/errors"
)

// ErrVersionConflict is returned when a conditional embedding write observes a
// version other than the one it read. The caller re-reads and retries.
var ErrVersionConflict = errors.New("user embedding version conflict")

// UserEmbedding is the evolving taste vector for one user.
//
// Vector is always L2-unit-normalized after any write. Version increases by
// exactly one per successful update; AppliedSwipes is the preference-update
// cursor: the number of terminal swipe edges already folded into Vector.
type UserEmbedding struct {
	UUID          string
	Vector        []float32
	Version       int32
	AppliedSwipes int32
	UpdatedTs     int64
}

// FindUserEmbedding is the find condition for user embeddings.
type FindUserEmbedding struct {
	UUID string
}

// UpdateUserEmbedding is a conditional write: it only succeeds when the stored
// version still equals ExpectedVersion, and writes Version = ExpectedVersion+1.
type UpdateUserEmbedding struct {
	UUID            string
	Vector          []float32
	ExpectedVersion int32
	AppliedSwipes   int32
	UpdatedTs       int64
}

// CreateUserEmbedding inserts the initial embedding at version 1. It fails if
// an embedding already exists for the user.
func (s *Store) CreateUserEmbedding(ctx context.Context, create *UserEmbedding) (*UserEmbedding, error) {
	if len(create.Vector) == 0 {
		return nil, errors.New("embedding vector cannot be empty")
	}
	create.Version = 1
	create.AppliedSwipes = 0
	return s.driver.CreateUserEmbedding(ctx, create)
}

// GetUserEmbedding returns the stored embedding, or nil when none exists.
func (s *Store) GetUserEmbedding(ctx context.Context, find *FindUserEmbedding) (*UserEmbedding, error) {
	return s.driver.GetUserEmbedding(ctx, find)
}

// UpdateUserEmbedding applies a conditional single-writer update. It returns
// ErrVersionConflict when another writer advanced the version first.
func (s *Store) UpdateUserEmbedding(ctx context.Context, update *UpdateUserEmbedding) (*UserEmbedding, error) {
	if len(update.Vector) == 0 {
		return nil, errors.New("embedding vector cannot be empty")
	}
	return s.driver.UpdateUserEmbedding(ctx, update)
}
