package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/mentalgym-backend/internal/data/repos"
	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/jobs/runtime"
	"github.com/yungbote/mentalgym-backend/internal/observability"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type Config struct {
	Concurrency  int
	PollInterval time.Duration
	StaleRunning time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Concurrency:  envutil.Int("WORKER_CONCURRENCY", 4),
		PollInterval: envutil.Duration("WORKER_POLL_INTERVAL", time.Second),
		StaleRunning: envutil.Duration("WORKER_STALE_RUNNING", 10*time.Minute),
	}
}

type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *runtime.Registry
	cfg      Config
	wg       sync.WaitGroup
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, registry *runtime.Registry, cfg Config) *Worker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.StaleRunning <= 0 {
		cfg.StaleRunning = 10 * time.Minute
	}
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
		cfg:      cfg,
	}
}

// Start launches the pool; loops exit when ctx is canceled.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting job worker pool", "concurrency", w.cfg.Concurrency, "job_types", w.registry.Types())
	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go w.runLoop(ctx, i+1)
	}
}

// Wait blocks until every loop started by Start has returned.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			// Drain what is runnable before waiting for the next tick.
			for ctx.Err() == nil {
				ran, err := w.RunOnce(ctx)
				if err != nil {
					w.log.Warn("ClaimNextRunnable failed", "worker_id", workerID, "error", err)
					break
				}
				if !ran {
					break
				}
			}
		}
	}
}

// RunOnce claims and runs at most one job. It reports whether a job ran.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.repo.ClaimNextRunnable(dbctx.Context{Ctx: ctx}, time.Now().UTC(), w.cfg.StaleRunning)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	started := time.Now()
	h, ok := w.registry.Get(job.JobType)
	jc := runtime.NewContext(ctx, w.db, job, w.repo, w.log, w.registry.Policy(job.JobType))
	if !ok {
		w.log.Warn("No handler registered for job_type", "job_type", job.JobType, "job_id", job.ID)
		jc.Fail("dispatch", &missingHandlerError{JobType: job.JobType})
		observability.Current().ObserveJob(job.JobType, types.JobStatusFailed, time.Since(started))
		return true, nil
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				w.log.Error("Job handler panic", "job_id", job.ID, "job_type", job.JobType, "panic", r)
				jc.Fail("panic", fmt.Errorf("panic: %v", r))
			}
		}()
		if runErr := h.Run(jc); runErr != nil && jc.Job.Status != types.JobStatusFailed {
			jc.Fail("run", runErr)
		}
	}()

	if jc.Job.Status == types.JobStatusRunning {
		jc.Succeed("done", nil)
	}
	observability.Current().ObserveJob(job.JobType, jc.Job.Status, time.Since(started))
	return true, nil
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string { return "no handler registered for job_type=" + e.JobType }
