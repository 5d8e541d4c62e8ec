package store

import (
	"context"

	"github.com/pkg/errors"
)

// UserItemStatus is the status of a user/item ledger edge.
type UserItemStatus string

const (
	// StatusCandidate marks an item proposed to the user and not yet reviewed.
	StatusCandidate UserItemStatus = "candidate"
	// StatusSwipeLeft is a dislike. Terminal for ranking purposes.
	StatusSwipeLeft UserItemStatus = "swipe_left"
	// StatusSwipeRight is a like. Terminal for ranking purposes.
	StatusSwipeRight UserItemStatus = "swipe_right"
	// StatusShortlisted and StatusConfirmed are downstream plan states that a
	// right-swiped item may move through. They must not be blocked here.
	StatusShortlisted UserItemStatus = "shortlisted"
	StatusConfirmed   UserItemStatus = "confirmed"
)

// ErrInvalidTransition is returned when a status write would violate the
// ledger's legal transition graph.
var ErrInvalidTransition = errors.New("invalid user item status transition")

// legalTransitions maps a current status to its allowed successors.
var legalTransitions = map[UserItemStatus][]UserItemStatus{
	StatusCandidate:   {StatusSwipeLeft, StatusSwipeRight},
	StatusSwipeRight:  {StatusShortlisted},
	StatusShortlisted: {StatusConfirmed},
}

// IsValidUserItemStatus reports whether s is one of the enumerated statuses.
func IsValidUserItemStatus(s UserItemStatus) bool {
	switch s {
	case StatusCandidate, StatusSwipeLeft, StatusSwipeRight, StatusShortlisted, StatusConfirmed:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is a legal edge transition.
func CanTransition(from, to UserItemStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsSwiped reports whether the status implies the user has reviewed the item.
// Shortlisted and confirmed items were necessarily right-swiped first.
func (s UserItemStatus) IsSwiped() bool {
	switch s {
	case StatusSwipeLeft, StatusSwipeRight, StatusShortlisted, StatusConfirmed:
		return true
	}
	return false
}

// IsLiked reports the swipe direction of a reviewed edge.
func (s UserItemStatus) IsLiked() bool {
	switch s {
	case StatusSwipeRight, StatusShortlisted, StatusConfirmed:
		return true
	}
	return false
}

// UserItemEdge is one row of the per-user feedback ledger.
//
// SwipeSeq is assigned exactly once, when the edge first reaches a swipe
// status: it takes the value of the user's total-swipe counter incremented in
// the same transaction, so it is a gapless per-user sequence. It never changes
// afterwards and is the fold order for the preference updater even after
// downstream transitions mutate Status. Zero means not yet swiped.
type UserItemEdge struct {
	UUID      string
	ItemID    string
	Status    UserItemStatus
	SwipeSeq  int32
	CreatedTs int64
	UpdatedTs int64
}

// FindUserItemEdge is the find condition for ledger edges.
type FindUserItemEdge struct {
	UUID     string
	ItemID   *string
	Status   *UserItemStatus
	Statuses []UserItemStatus
}

// SwipeStats is the per-user swipe counter row, maintained transactionally
// alongside each ledger status write so the progression gate can read both
// counters consistently in one query.
type SwipeStats struct {
	UUID        string
	TotalSwipes int32
	RightSwipes int32
	UpdatedTs   int64
}

// UpsertUserItemEdge creates a ledger edge, or leaves an existing one
// untouched (candidate re-discovery must not reset swipe state).
func (s *Store) UpsertUserItemEdge(ctx context.Context, upsert *UserItemEdge) (*UserItemEdge, error) {
	if !IsValidUserItemStatus(upsert.Status) {
		return nil, errors.Errorf("invalid status: %s", upsert.Status)
	}
	return s.driver.UpsertUserItemEdge(ctx, upsert)
}

// UpdateUserItemStatus applies a legal status transition and, when the edge
// newly reaches a swipe status, bumps the user's swipe counters in the same
// transaction. Returns ErrInvalidTransition for illegal moves.
func (s *Store) UpdateUserItemStatus(ctx context.Context, userUUID, itemID string, status UserItemStatus) (*UserItemEdge, error) {
	if !IsValidUserItemStatus(status) {
		return nil, errors.Errorf("invalid status: %s", status)
	}
	return s.driver.UpdateUserItemStatus(ctx, userUUID, itemID, status)
}

func (s *Store) ListUserItemEdges(ctx context.Context, find *FindUserItemEdge) ([]*UserItemEdge, error) {
	return s.driver.ListUserItemEdges(ctx, find)
}

// ListSwipedEdges lists every reviewed edge for the user ordered by swipe_seq
// ascending. The order is deterministic so a fold cursor held as a plain
// offset always resumes at the same place.
func (s *Store) ListSwipedEdges(ctx context.Context, userUUID string) ([]*UserItemEdge, error) {
	return s.driver.ListSwipedEdges(ctx, userUUID)
}

// GetSwipeStats returns the counter row for the user. A user with no recorded
// swipes yields a zero-valued row, not nil.
func (s *Store) GetSwipeStats(ctx context.Context, userUUID string) (*SwipeStats, error) {
	stats, err := s.driver.GetSwipeStats(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return &SwipeStats{UUID: userUUID}, nil
	}
	return stats, nil
}
