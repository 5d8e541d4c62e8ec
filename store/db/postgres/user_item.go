package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/artrec/hunterd/store"
)

// UpsertUserItemEdge creates a ledger edge if none exists. An existing edge is
// left untouched: re-discovering an already swiped item must not reset it.
func (d *DB) UpsertUserItemEdge(ctx context.Context, upsert *store.UserItemEdge) (*store.UserItemEdge, error) {
	stmt := `
		INSERT INTO user_item (uuid, item_id, status, swipe_seq, created_ts, updated_ts)
		VALUES (` + placeholders(6) + `)
		ON CONFLICT (uuid, item_id) DO NOTHING
	`

	_, err := d.db.ExecContext(ctx, stmt,
		upsert.UUID,
		upsert.ItemID,
		string(upsert.Status),
		upsert.SwipeSeq,
		upsert.CreatedTs,
		upsert.UpdatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert user item edge")
	}

	return upsert, nil
}

// UpdateUserItemStatus applies a legal transition under row lock. When the
// edge newly becomes a swipe, the user's counters are bumped in the same
// transaction and the incremented total is assigned as the edge's swipe_seq.
func (d *DB) UpdateUserItemStatus(ctx context.Context, userUUID, itemID string, status store.UserItemStatus) (*store.UserItemEdge, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var current string
	var swipeSeq int32
	var createdTs int64
	err = tx.QueryRowContext(ctx,
		`SELECT status, swipe_seq, created_ts FROM user_item WHERE uuid = $1 AND item_id = $2 FOR UPDATE`,
		userUUID, itemID,
	).Scan(&current, &swipeSeq, &createdTs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Errorf("user item edge not found: %s/%s", userUUID, itemID)
		}
		return nil, errors.Wrap(err, "failed to lock user item edge")
	}

	currentStatus := store.UserItemStatus(current)
	if !store.CanTransition(currentStatus, status) {
		return nil, errors.Wrapf(store.ErrInvalidTransition, "%s -> %s", currentStatus, status)
	}

	now := time.Now().Unix()
	newSwipe := currentStatus == store.StatusCandidate && status.IsSwiped()
	if newSwipe {
		rightDelta := 0
		if status == store.StatusSwipeRight {
			rightDelta = 1
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO user_swipe_stats (uuid, total_swipes, right_swipes, updated_ts)
			VALUES ($1, 1, $2, $3)
			ON CONFLICT (uuid)
			DO UPDATE SET
				total_swipes = user_swipe_stats.total_swipes + 1,
				right_swipes = user_swipe_stats.right_swipes + $2,
				updated_ts = $3
			RETURNING total_swipes
		`, userUUID, rightDelta, now).Scan(&swipeSeq)
		if err != nil {
			return nil, errors.Wrap(err, "failed to bump swipe stats")
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE user_item SET status = $1, swipe_seq = $2, updated_ts = $3 WHERE uuid = $4 AND item_id = $5`,
		string(status), swipeSeq, now, userUUID, itemID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update user item status")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit user item status update")
	}

	return &store.UserItemEdge{
		UUID:      userUUID,
		ItemID:    itemID,
		Status:    status,
		SwipeSeq:  swipeSeq,
		CreatedTs: createdTs,
		UpdatedTs: now,
	}, nil
}

// ListUserItemEdges lists ledger edges.
func (d *DB) ListUserItemEdges(ctx context.Context, find *store.FindUserItemEdge) ([]*store.UserItemEdge, error) {
	where, args := []string{"uuid = " + placeholder(1)}, []any{find.UUID}

	if find.ItemID != nil {
		where, args = append(where, "item_id = "+placeholder(len(args)+1)), append(args, *find.ItemID)
	}
	if find.Status != nil {
		where, args = append(where, "status = "+placeholder(len(args)+1)), append(args, string(*find.Status))
	}
	if len(find.Statuses) > 0 {
		list := make([]string, len(find.Statuses))
		for i, status := range find.Statuses {
			list[i] = placeholder(len(args) + 1)
			args = append(args, string(status))
		}
		where = append(where, "status IN ("+strings.Join(list, ", ")+")")
	}

	query := `
		SELECT uuid, item_id, status, swipe_seq, created_ts, updated_ts
		FROM user_item
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC, item_id ASC
	`

	return d.queryUserItemEdges(ctx, query, args...)
}

// ListSwipedEdges lists reviewed edges in swipe order.
func (d *DB) ListSwipedEdges(ctx context.Context, userUUID string) ([]*store.UserItemEdge, error) {
	query := `
		SELECT uuid, item_id, status, swipe_seq, created_ts, updated_ts
		FROM user_item
		WHERE uuid = $1 AND swipe_seq > 0
		ORDER BY swipe_seq ASC
	`
	return d.queryUserItemEdges(ctx, query, userUUID)
}

func (d *DB) queryUserItemEdges(ctx context.Context, query string, args ...any) ([]*store.UserItemEdge, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user item edges")
	}
	defer rows.Close()

	list := []*store.UserItemEdge{}
	for rows.Next() {
		var edge store.UserItemEdge
		var status string
		err := rows.Scan(
			&edge.UUID,
			&edge.ItemID,
			&status,
			&edge.SwipeSeq,
			&edge.CreatedTs,
			&edge.UpdatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan user item edge")
		}
		edge.Status = store.UserItemStatus(status)
		list = append(list, &edge)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// GetSwipeStats reads the counter row for the user.
func (d *DB) GetSwipeStats(ctx context.Context, userUUID string) (*store.SwipeStats, error) {
	query := `
		SELECT uuid, total_swipes, right_swipes, updated_ts
		FROM user_swipe_stats
		WHERE uuid = ` + placeholder(1)

	var stats store.SwipeStats
	err := d.db.QueryRowContext(ctx, query, userUUID).Scan(
		&stats.UUID,
		&stats.TotalSwipes,
		&stats.RightSwipes,
		&stats.UpdatedTs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get swipe stats")
	}

	return &stats, nil
}
