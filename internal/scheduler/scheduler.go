package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pwannenmacher/criteria-settings/internal/config"
	"github.com/pwannenmacher/criteria-settings/internal/metrics"
)

const jobSessionCleanup = "session_cleanup"

// SessionPurger deletes sessions whose tokens have expired
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// Scheduler handles periodic tasks
type Scheduler struct {
	purger  SessionPurger
	config  *config.SchedulerConfig
	metrics *metrics.Metrics
	cron    *cron.Cron
	timeout time.Duration
}

// NewScheduler creates a new scheduler. m may be nil.
func NewScheduler(purger SessionPurger, cfg *config.SchedulerConfig, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		purger:  purger,
		config:  cfg,
		metrics: m,
		cron:    cron.New(),
		timeout: time.Minute,
	}
}

// Run starts all scheduled tasks and blocks until ctx is cancelled. Running
// jobs are allowed to finish before it returns.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.register(); err != nil {
		return err
	}

	s.cron.Start()
	slog.Info("Scheduler started", "session_cleanup_enabled", s.config.EnableSessionCleanup)

	<-ctx.Done()

	<-s.cron.Stop().Done()
	slog.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) register() error {
	if !s.config.EnableSessionCleanup {
		return nil
	}
	if _, err := s.cron.AddFunc(s.config.SessionCleanupCron, s.purgeSessions); err != nil {
		return fmt.Errorf("invalid session cleanup schedule %q: %w", s.config.SessionCleanupCron, err)
	}
	return nil
}

func (s *Scheduler) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	purged, err := s.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		slog.Error("Failed to purge expired sessions", "error", err)
		s.observe("error", 0)
		return
	}

	slog.Info("Purged expired sessions", "count", purged)
	s.observe("success", purged)
}

func (s *Scheduler) observe(status string, purged int64) {
	if s.metrics == nil {
		return
	}
	s.metrics.JobRunsTotal.WithLabelValues(jobSessionCleanup, status).Inc()
	s.metrics.SessionsPurgedTotal.Add(float64(purged))
}
