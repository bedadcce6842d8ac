package service

import (
	"context"
	"fmt"

	"github.com/and161185/salesgate/internal/errs"
	"go.uber.org/zap"
)

// RevocationChecker reports whether a raw token is blacklisted.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, raw string) (bool, error)
}

// ActivityGuard applies the inactivity window to a raw token.
type ActivityGuard interface {
	CheckAndInvalidateIfInactive(ctx context.Context, raw string) (bool, error)
	UpdateActivity(ctx context.Context, raw string) error
}

// Gate is the per-request admission check run before protected handlers.
type Gate struct {
	revocations RevocationChecker
	activity    ActivityGuard
	log         *zap.Logger
}

// NewGate constructs a Gate.
func NewGate(revocations RevocationChecker, activity ActivityGuard, log *zap.Logger) *Gate {
	return &Gate{revocations: revocations, activity: activity, log: log}
}

// Admit returns nil if the request may proceed, errs.ErrTokenRevoked or
// errs.ErrSessionInactive if it must be rejected, or a wrapped store error.
//
// The blacklist is consulted first so a logged-out token never gets its activity refreshed.
func (g *Gate) Admit(ctx context.Context, raw string) error {
	revoked, err := g.revocations.IsRevoked(ctx, raw)
	if err != nil {
		return fmt.Errorf("gate: %w", err)
	}
	if revoked {
		return errs.ErrTokenRevoked
	}

	inactive, err := g.activity.CheckAndInvalidateIfInactive(ctx, raw)
	if err != nil {
		return fmt.Errorf("gate: %w", err)
	}
	if inactive {
		return errs.ErrSessionInactive
	}

	if err := g.activity.UpdateActivity(ctx, raw); err != nil {
		g.log.Warn("activity update failed, admitting request", zap.Error(err))
	}
	return nil
}
