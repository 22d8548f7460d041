// Package janitor expires abandoned web UI session state on a schedule.
// Recorded mistakes are never touched.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/lingo-tutor/internal/store"
	"github.com/robfig/cron/v3"
)

// Janitor periodically removes session state that has not been updated
// within the TTL.
type Janitor struct {
	cron     *cron.Cron
	sessions store.SessionStore
	ttl      time.Duration
	logger   *slog.Logger
}

// New schedules cleanup using a cron expression such as "@every 10m".
func New(sessions store.SessionStore, ttl time.Duration, schedule string, logger *slog.Logger) (*Janitor, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	if logger == nil {
		logger = slog.Default()
	}

	j := &Janitor{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
	}

	if _, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Warn("session cleanup failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule session cleanup %q: %w", schedule, err)
	}
	return j, nil
}

// RunOnce removes expired session state immediately.
func (j *Janitor) RunOnce(ctx context.Context) (int64, error) {
	removed, err := j.sessions.CleanupExpiredSessions(ctx, j.ttl)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		j.logger.Info("expired sessions removed", "count", removed, "ttl", j.ttl)
	}
	return removed, nil
}

// Start begins the schedule in the background.
func (j *Janitor) Start() {
	j.cron.Start()
	j.logger.Info("session janitor started", "ttl", j.ttl)
}

// Stop halts the schedule and waits for a running cleanup to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}
