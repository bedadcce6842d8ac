package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/and161185/salesgate/internal/errs"
	"github.com/and161185/salesgate/internal/model"
	"github.com/jackc/pgx/v5"
)

// ActivityRepo implements ActivityRepository using PostgreSQL.
type ActivityRepo struct{ db *DB }

// NewActivityRepo constructs an activity repository.
func NewActivityRepo(db *DB) *ActivityRepo { return &ActivityRepo{db: db} }

// Get loads the activity record for a digest.
func (r *ActivityRepo) Get(ctx context.Context, tokenHash string) (*model.ActivityRecord, error) {
	const q = `
SELECT token_hash, user_id, created_at, last_activity_at
FROM token_activity WHERE token_hash = $1`
	var a model.ActivityRecord
	err := r.db.Pool.QueryRow(ctx, q, tokenHash).Scan(&a.TokenHash, &a.UserID, &a.CreatedAt, &a.LastActivityAt)
	switch {
	case err == nil:
		return &a, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, errs.ErrNotFound
	default:
		return nil, err
	}
}

// Touch relies on the unique token_hash index: concurrent first requests for the
// same token end up as one row.
func (r *ActivityRepo) Touch(ctx context.Context, tokenHash, userID string, at time.Time) error {
	const q = `
INSERT INTO token_activity (token_hash, user_id, created_at, last_activity_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (token_hash)
DO UPDATE SET last_activity_at = EXCLUDED.last_activity_at`
	_, err := r.db.Pool.Exec(ctx, q, tokenHash, userID, at)
	return err
}

// Delete removes the record for a digest.
func (r *ActivityRepo) Delete(ctx context.Context, tokenHash string) error {
	const q = `DELETE FROM token_activity WHERE token_hash = $1`
	_, err := r.db.Pool.Exec(ctx, q, tokenHash)
	return err
}

// DeleteOlderThan removes records idle since before cutoff.
func (r *ActivityRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM token_activity WHERE last_activity_at < $1`
	tag, err := r.db.Pool.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
