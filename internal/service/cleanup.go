package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ExpiredPruner removes blacklist entries whose tokens have expired.
type ExpiredPruner interface {
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}

// ActivitySweeper removes activity records idle since before cutoff.
type ActivitySweeper interface {
	CleanupOldActivities(ctx context.Context, cutoff time.Time) (int64, error)
}

// Cleanup is the daily storage sweep for blacklist and activity rows.
// Every step is idempotent; a failed run is simply repeated by the next one.
type Cleanup struct {
	blacklist ExpiredPruner
	activity  ActivitySweeper
	retention time.Duration // absolute activity horizon
	at        time.Duration // offset from local midnight
	log       *zap.Logger
	now       func() time.Time
	running   atomic.Bool
}

// NewCleanup constructs a Cleanup that runs daily at the given offset from midnight.
func NewCleanup(blacklist ExpiredPruner, activity ActivitySweeper, retention, at time.Duration, log *zap.Logger) *Cleanup {
	return &Cleanup{blacklist: blacklist, activity: activity, retention: retention, at: at, log: log, now: time.Now}
}

// Run blocks, running a sweep at each scheduled time until ctx is cancelled.
func (c *Cleanup) Run(ctx context.Context) {
	for {
		now := c.now()
		next := c.nextRun(now)
		c.log.Debug("next cleanup scheduled", zap.Time("at", next))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			c.log.Info("cleanup scheduler stopped")
			return
		case <-timer.C:
			_ = c.RunOnce(ctx)
		}
	}
}

// RunOnce prunes expired blacklist entries, then stale activity records.
// Both steps always run; their errors are logged and joined. No retry within a run.
func (c *Cleanup) RunOnce(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		c.log.Warn("cleanup already running, skipping")
		return nil
	}
	defer c.running.Store(false)

	now := c.now()
	var errList []error

	if n, err := c.blacklist.PruneExpired(ctx, now); err != nil {
		c.log.Error("blacklist cleanup failed", zap.Error(err))
		errList = append(errList, err)
	} else {
		c.log.Info("blacklist cleanup done", zap.Int64("deleted", n))
	}

	cutoff := now.Add(-c.retention)
	if n, err := c.activity.CleanupOldActivities(ctx, cutoff); err != nil {
		c.log.Error("activity cleanup failed", zap.Error(err))
		errList = append(errList, err)
	} else {
		c.log.Info("activity cleanup done", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	}

	return errors.Join(errList...)
}

// nextRun returns the first scheduled instant strictly after now.
func (c *Cleanup) nextRun(now time.Time) time.Time {
	y, m, d := now.Date()
	next := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Add(c.at)
	if !next.After(now) {
		next = time.Date(y, m, d+1, 0, 0, 0, 0, now.Location()).Add(c.at)
	}
	return next
}
