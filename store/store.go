// Package store provides database access to all raw objects.
package store

import (
	"context"
	"database/sql"

	"github.com/artrec/hunterd/internal/profile"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Migrate(ctx context.Context) error

	// UserProfile
	UpsertUserProfile(ctx context.Context, upsert *UserProfile) (*UserProfile, error)
	GetUserProfile(ctx context.Context, find *FindUserProfile) (*UserProfile, error)

	// UserEmbedding
	CreateUserEmbedding(ctx context.Context, create *UserEmbedding) (*UserEmbedding, error)
	GetUserEmbedding(ctx context.Context, find *FindUserEmbedding) (*UserEmbedding, error)
	UpdateUserEmbedding(ctx context.Context, update *UpdateUserEmbedding) (*UserEmbedding, error)

	// CandidateItem
	UpsertCandidateItem(ctx context.Context, upsert *CandidateItem) (*CandidateItem, error)
	ListCandidateItems(ctx context.Context, find *FindCandidateItem) ([]*CandidateItem, error)

	// ItemEmbedding
	UpsertItemEmbedding(ctx context.Context, upsert *ItemEmbedding) (*ItemEmbedding, error)
	ListItemEmbeddings(ctx context.Context, find *FindItemEmbedding) ([]*ItemEmbedding, error)

	// UserItemEdge ledger
	UpsertUserItemEdge(ctx context.Context, upsert *UserItemEdge) (*UserItemEdge, error)
	UpdateUserItemStatus(ctx context.Context, userUUID, itemID string, status UserItemStatus) (*UserItemEdge, error)
	ListUserItemEdges(ctx context.Context, find *FindUserItemEdge) ([]*UserItemEdge, error)
	ListSwipedEdges(ctx context.Context, userUUID string) ([]*UserItemEdge, error)
	GetSwipeStats(ctx context.Context, userUUID string) (*SwipeStats, error)

	// GenerationStatus
	UpsertGenerationStatus(ctx context.Context, upsert *GenerationStatus) (*GenerationStatus, error)
	GetGenerationStatus(ctx context.Context, userUUID string) (*GenerationStatus, error)
}

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// Migrate ensures the schema exists. Both drivers apply their embedded schema
// idempotently, so calling this on an initialized database is a no-op.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}
