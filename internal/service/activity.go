package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgcrypto "github.com/and161185/salesgate/internal/crypto"
	"github.com/and161185/salesgate/internal/errs"
	"github.com/and161185/salesgate/internal/repository"
	"github.com/and161185/salesgate/internal/token"
	"go.uber.org/zap"
)

// Revoker blacklists a raw token.
type Revoker interface {
	Add(ctx context.Context, raw string) error
}

// ActivityTracker implements the sliding inactivity window.
//
// A token has no explicit status: no record means untracked, a record means active.
// Inactivity is evaluated lazily when the token is presented again.
type ActivityTracker struct {
	repo    repository.ActivityRepository
	revoker Revoker
	tokens  token.Parser
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// NewActivityTracker constructs an ActivityTracker with the given inactivity timeout.
func NewActivityTracker(
	repo repository.ActivityRepository, revoker Revoker, tokens token.Parser, timeout time.Duration, log *zap.Logger,
) *ActivityTracker {
	return &ActivityTracker{repo: repo, revoker: revoker, tokens: tokens, timeout: timeout, log: log, now: time.Now}
}

// CheckAndInvalidateIfInactive reports true when the token was idle for at least the
// timeout; in that case it has just been blacklisted and its record removed.
// An untracked token is not inactive.
func (t *ActivityTracker) CheckAndInvalidateIfInactive(ctx context.Context, raw string) (bool, error) {
	hash := pkgcrypto.HashToken(raw)
	rec, err := t.repo.Get(ctx, hash)
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load activity: %w", err)
	}

	idle := t.now().Sub(rec.LastActivityAt)
	if idle < t.timeout {
		return false, nil
	}

	if err := t.revoker.Add(ctx, raw); err != nil {
		return false, fmt.Errorf("revoke inactive token: %w", err)
	}
	if err := t.repo.Delete(ctx, hash); err != nil {
		// token is already blacklisted; the stale row is swept by cleanup
		t.log.Warn("delete inactive activity record", zap.String("user_id", rec.UserID), zap.Error(err))
	}
	t.log.Info("token revoked for inactivity", zap.String("user_id", rec.UserID), zap.Duration("idle", idle))
	return true, nil
}

// UpdateActivity creates or refreshes the record for raw.
// Unparseable tokens are skipped: tracking is best-effort.
func (t *ActivityTracker) UpdateActivity(ctx context.Context, raw string) error {
	claims, err := t.tokens.Parse(raw)
	if err != nil {
		t.log.Debug("skip activity update for unparseable token", zap.Error(err))
		return nil
	}
	if err := t.repo.Touch(ctx, pkgcrypto.HashToken(raw), claims.Subject, t.now()); err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}
	return nil
}

// RemoveActivity deletes the record for raw, if any.
func (t *ActivityTracker) RemoveActivity(ctx context.Context, raw string) error {
	if err := t.repo.Delete(ctx, pkgcrypto.HashToken(raw)); err != nil {
		return fmt.Errorf("remove activity: %w", err)
	}
	return nil
}

// CleanupOldActivities deletes records with lastActivityAt < cutoff, whether or not
// their tokens are still valid.
func (t *ActivityTracker) CleanupOldActivities(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := t.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup activity: %w", err)
	}
	return n, nil
}
