package postgres

import (
	"context"
	"time"

	"github.com/and161185/salesgate/internal/model"
)

// BlacklistRepo implements BlacklistRepository using PostgreSQL.
type BlacklistRepo struct{ db *DB }

// NewBlacklistRepo constructs a blacklist repository.
func NewBlacklistRepo(db *DB) *BlacklistRepo { return &BlacklistRepo{db: db} }

// Upsert inserts the entry or overwrites an existing one for the same digest.
func (r *BlacklistRepo) Upsert(ctx context.Context, e model.BlacklistEntry) error {
	const q = `
INSERT INTO token_blacklist (token_hash, user_id, expires_at, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (token_hash)
DO UPDATE SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at`
	_, err := r.db.Pool.Exec(ctx, q, e.TokenHash, e.UserID, e.ExpiresAt, e.CreatedAt)
	return err
}

// Exists reports whether the digest is present.
func (r *BlacklistRepo) Exists(ctx context.Context, tokenHash string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE token_hash = $1)`
	var ok bool
	if err := r.db.Pool.QueryRow(ctx, q, tokenHash).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// DeleteExpired removes entries whose token would be rejected on its own expiry anyway.
func (r *BlacklistRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM token_blacklist WHERE expires_at <= $1`
	tag, err := r.db.Pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
