// Package maintenance runs the conversation retention job on a schedule.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aiox-platform/persona/internal/metrics"
	inats "github.com/aiox-platform/persona/internal/nats"
	iredis "github.com/aiox-platform/persona/internal/redis"
)

// LockKey is the Redis key that serialises retention passes across replicas.
const LockKey = "persona:maintenance:retention"

// Cleaner is the memory manager surface the janitor drives.
type Cleaner interface {
	Users(ctx context.Context) ([]string, error)
	CleanOldConversations(ctx context.Context, userID string, daysToKeep int) (int64, error)
}

// EventPublisher announces finished passes. It may be nil.
type EventPublisher interface {
	PublishMaintenanceCleaned(ctx context.Context, event inats.MaintenanceCleanedEvent) error
}

// Config schedules the janitor.
type Config struct {
	Schedule      string
	RetentionDays int
	LockTTL       time.Duration
}

// Result summarises one pass.
type Result struct {
	Skipped      bool
	UsersScanned int
	TurnsRemoved int64
	Failures     int
}

// Janitor deletes expired turns for every user. Only the replica holding
// the Redis lock runs a pass; the others skip it.
type Janitor struct {
	cleaner Cleaner
	locker  *iredis.Locker
	events  EventPublisher
	cfg     Config
}

// NewJanitor creates a Janitor. locker may be nil for single-replica use.
func NewJanitor(cleaner Cleaner, locker *iredis.Locker, events EventPublisher, cfg Config) *Janitor {
	if cfg.Schedule == "" {
		cfg.Schedule = "@daily"
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &Janitor{cleaner: cleaner, locker: locker, events: events, cfg: cfg}
}

// Start schedules RunOnce and blocks until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(j.cfg.Schedule, func() {
		if _, err := j.RunOnce(ctx); err != nil {
			slog.Error("retention pass failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling retention job %q: %w", j.cfg.Schedule, err)
	}

	c.Start()
	slog.Info("maintenance janitor started", "schedule", j.cfg.Schedule, "retention_days", j.cfg.RetentionDays)

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("maintenance janitor stopped")
	return nil
}

// RunOnce performs one retention pass. A failure for one user is logged and
// counted; the pass continues with the next user.
func (j *Janitor) RunOnce(ctx context.Context) (Result, error) {
	if j.locker != nil {
		lease, err := j.locker.TryLock(ctx, LockKey, j.cfg.LockTTL)
		if errors.Is(err, iredis.ErrLockHeld) {
			metrics.MaintenanceRunsTotal.WithLabelValues("skipped").Inc()
			slog.Debug("retention pass skipped, lock held elsewhere")
			return Result{Skipped: true}, nil
		}
		if err != nil {
			metrics.MaintenanceRunsTotal.WithLabelValues("error").Inc()
			return Result{}, err
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := lease.Release(releaseCtx); err != nil {
				slog.Warn("releasing maintenance lock", "error", err)
			}
		}()
	}

	start := time.Now()
	users, err := j.cleaner.Users(ctx)
	if err != nil {
		metrics.MaintenanceRunsTotal.WithLabelValues("error").Inc()
		return Result{}, err
	}

	var res Result
	for _, u := range users {
		if ctx.Err() != nil {
			break
		}
		res.UsersScanned++
		removed, err := j.cleaner.CleanOldConversations(ctx, u, j.cfg.RetentionDays)
		if err != nil {
			res.Failures++
			slog.Warn("cleaning conversations", "error", err, "user_id", u)
			continue
		}
		res.TurnsRemoved += removed
	}

	outcome := "ok"
	if res.Failures > 0 {
		outcome = "error"
	}
	metrics.MaintenanceRunsTotal.WithLabelValues(outcome).Inc()
	slog.Info("retention pass finished",
		"users", res.UsersScanned,
		"removed", res.TurnsRemoved,
		"failures", res.Failures,
		"duration", time.Since(start),
	)

	if j.events != nil {
		event := inats.MaintenanceCleanedEvent{
			UsersScanned:  res.UsersScanned,
			TurnsRemoved:  res.TurnsRemoved,
			RetentionDays: j.cfg.RetentionDays,
			Failures:      res.Failures,
			Timestamp:     time.Now().UTC(),
		}
		if err := j.events.PublishMaintenanceCleaned(ctx, event); err != nil {
			slog.Warn("publishing maintenance event", "error", err)
		}
	}
	return res, nil
}
