package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pwannenmacher/criteria-settings/internal/config"
	"github.com/pwannenmacher/criteria-settings/internal/metrics"
)

type fakePurger struct {
	purged int64
	err    error
	calls  int
}

func (f *fakePurger) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	f.calls++
	return f.purged, f.err
}

func TestPurgeSessionsRecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	purger := &fakePurger{purged: 3}
	s := NewScheduler(purger, &config.SchedulerConfig{}, m)

	s.purgeSessions()
	purger.err = errors.New("db down")
	s.purgeSessions()

	if purger.calls != 2 {
		t.Fatalf("Expected 2 purge calls, got %d", purger.calls)
	}
	if got := testutil.ToFloat64(m.SessionsPurgedTotal); got != 3 {
		t.Errorf("Expected 3 purged sessions, got %v", got)
	}
	if got := testutil.ToFloat64(m.JobRunsTotal.WithLabelValues(jobSessionCleanup, "success")); got != 1 {
		t.Errorf("Expected 1 successful run, got %v", got)
	}
	if got := testutil.ToFloat64(m.JobRunsTotal.WithLabelValues(jobSessionCleanup, "error")); got != 1 {
		t.Errorf("Expected 1 failed run, got %v", got)
	}
}

func TestRunRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(&fakePurger{}, &config.SchedulerConfig{
		EnableSessionCleanup: true,
		SessionCleanupCron:   "every now and then",
	}, nil)

	if err := s.Run(context.Background()); err == nil {
		t.Error("Expected an invalid schedule to be rejected")
	}
}

func TestRunStopsWithContext(t *testing.T) {
	s := NewScheduler(&fakePurger{}, &config.SchedulerConfig{
		EnableSessionCleanup: true,
		SessionCleanupCron:   "@hourly",
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
