package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type SessionSweeper interface {
	AbandonStale(ctx context.Context, idle time.Duration) (int64, error)
}

// AbandonmentScheduler periodically flags response sessions nobody touched
// within the idle window.
type AbandonmentScheduler struct {
	sweeper  SessionSweeper
	interval time.Duration
	idle     time.Duration
}

func NewAbandonmentScheduler(sweeper SessionSweeper, interval, idle time.Duration) *AbandonmentScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if idle <= 0 {
		idle = 24 * time.Hour
	}
	return &AbandonmentScheduler{sweeper: sweeper, interval: interval, idle: idle}
}

func (s *AbandonmentScheduler) Start(ctx context.Context) {
	if s.sweeper == nil {
		slog.Warn("abandonment scheduler skipped: no sweeper configured")
		return
	}
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		s.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

func (s *AbandonmentScheduler) run(ctx context.Context) {
	abandoned, err := s.sweeper.AbandonStale(ctx, s.idle)
	if err != nil {
		slog.Error("abandon stale sessions failed", "err", err)
		return
	}
	if abandoned > 0 {
		slog.Info("sessions abandoned", "count", abandoned, "idle", s.idle)
	}
}
