package repository

import (
	"context"
	"time"

	"github.com/and161185/salesgate/internal/model"
)

// BlacklistRepository stores revoked token digests.
type BlacklistRepository interface {
	// Upsert records the entry; repeating it for the same digest overwrites (last write wins).
	Upsert(ctx context.Context, e model.BlacklistEntry) error
	// Exists reports whether the digest is blacklisted.
	Exists(ctx context.Context, tokenHash string) (bool, error)
	// DeleteExpired removes entries with expires_at <= now and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ActivityRepository stores the last admission time per token digest.
type ActivityRepository interface {
	// Get returns the record or errs.ErrNotFound.
	Get(ctx context.Context, tokenHash string) (*model.ActivityRecord, error)
	// Touch inserts the record or refreshes last_activity_at atomically, preserving created_at.
	Touch(ctx context.Context, tokenHash, userID string, at time.Time) error
	// Delete removes the record; a missing record is not an error.
	Delete(ctx context.Context, tokenHash string) error
	// DeleteOlderThan removes records with last_activity_at < cutoff and returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
