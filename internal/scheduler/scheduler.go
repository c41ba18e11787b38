// Package scheduler triggers the weekly blind spot report in-process.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"

	"github.com/yungbote/mentalgym-backend/internal/modules/notifications"
	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
	"github.com/yungbote/mentalgym-backend/internal/platform/redis"
)

const (
	ModeCron     = "cron"
	ModeTemporal = "temporal"
	ModeOff      = "off"

	weeklyLockKey = "weekly_report"
)

type Config struct {
	Mode string
	// Spec has a leading seconds field.
	Spec     string
	Location *time.Location
	LockTTL  time.Duration
}

func ConfigFromEnv() Config {
	cfg := Config{
		Mode:    envutil.String("SCHEDULER_MODE", ModeCron),
		Spec:    envutil.String("WEEKLY_REPORT_CRON", "0 0 18 * * 0"),
		LockTTL: envutil.Duration("WEEKLY_REPORT_LOCK_TTL", 2*time.Hour),
	}
	loc, err := time.LoadLocation(envutil.String("WEEKLY_REPORT_TZ", notifications.ReportTimezone))
	if err != nil {
		loc = time.UTC
	}
	cfg.Location = loc
	return cfg
}

type WeeklyRunner interface {
	RunWeekly(ctx context.Context, now time.Time) (*notifications.WeeklyRunSummary, error)
}

type Scheduler struct {
	log    *logger.Logger
	cfg    Config
	runner WeeklyRunner
	locker redis.Locker
	now    func() time.Time
}

func New(baseLog *logger.Logger, cfg Config, runner WeeklyRunner, locker redis.Locker) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Hour
	}
	if locker == nil {
		locker = redis.NewLocalLocker()
	}
	return &Scheduler{
		log:    baseLog.With("component", "WeeklyScheduler"),
		cfg:    cfg,
		runner: runner,
		locker: locker,
		now:    time.Now,
	}
}

// Run blocks until ctx is canceled, firing the weekly report on cfg.Spec.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.NewWithLocation(s.cfg.Location)
	if err := c.AddFunc(s.cfg.Spec, func() {
		if _, _, err := s.RunNow(ctx); err != nil {
			s.log.Error("Scheduled weekly report failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("weekly report schedule %q: %w", s.cfg.Spec, err)
	}
	c.Start()
	s.log.Info("Weekly report scheduler started", "spec", s.cfg.Spec, "tz", s.cfg.Location.String())
	<-ctx.Done()
	c.Stop()
	return nil
}

// RunNow runs the weekly report unless another run holds the lock. ran is
// false when the run was skipped for overlap.
func (s *Scheduler) RunNow(ctx context.Context) (summary *notifications.WeeklyRunSummary, ran bool, err error) {
	release, ok, err := s.locker.TryLock(ctx, weeklyLockKey, s.cfg.LockTTL)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.log.Warn("Weekly report already running; skipping")
		return nil, false, nil
	}
	defer release()

	summary, err = s.runner.RunWeekly(ctx, s.now())
	return summary, true, err
}
