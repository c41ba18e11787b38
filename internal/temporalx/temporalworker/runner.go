package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
	"github.com/yungbote/mentalgym-backend/internal/temporalx"
	"github.com/yungbote/mentalgym-backend/internal/temporalx/weekly"
)

// Runner hosts the weekly report workflow on the configured task queue and
// keeps its cron execution scheduled.
type Runner struct {
	log    *logger.Logger
	cfg    temporalx.Config
	tc     temporalsdkclient.Client
	weekly weekly.Runner
}

func NewRunner(log *logger.Logger, cfg temporalx.Config, tc temporalsdkclient.Client, weeklyRunner weekly.Runner) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if weeklyRunner == nil {
		return nil, fmt.Errorf("temporal worker missing deps")
	}
	return &Runner{
		log:    log.With("component", "TemporalWorker"),
		cfg:    cfg,
		tc:     tc,
		weekly: weeklyRunner,
	}, nil
}

// Run starts the worker, schedules the cron workflow and blocks until ctx
// is canceled.
func (r *Runner) Run(ctx context.Context) error {
	w, err := r.start(ctx)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := weekly.EnsureCron(ctx, r.log, r.tc, r.cfg.TaskQueue); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (r *Runner) start(ctx context.Context) (worker.Worker, error) {
	r.log.Info("Starting Temporal worker", "address", r.cfg.Address, "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue)
	deadline := time.Now().Add(r.cfg.DialMaxWait)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w := r.newWorker()
		startErr := w.Start()
		if startErr == nil {
			r.log.Info("Temporal worker started", "task_queue", r.cfg.TaskQueue, "attempts", attempt)
			return w, nil
		}
		w.Stop()

		var nfe *serviceerror.NamespaceNotFound
		if errors.As(startErr, &nfe) {
			if !r.cfg.AutoRegisterNamespace {
				return nil, fmt.Errorf("temporal namespace not found (namespace=%s): %w", r.cfg.Namespace, startErr)
			}
			if err := temporalx.EnsureNamespace(ctx, r.log, r.cfg); err != nil {
				r.log.Warn("Temporal namespace ensure failed", "namespace", r.cfg.Namespace, "error", err)
			}
		}
		if time.Now().After(deadline) {
			return nil, startErr
		}
		r.log.Warn("Temporal worker failed to start; retrying", "attempt", attempt, "error", startErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
		}
	}
}

func (r *Runner) newWorker() worker.Worker {
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     2,
		MaxConcurrentWorkflowTaskExecutionSize: 2,
	})
	acts := &weekly.Activities{Runner: r.weekly}
	w.RegisterWorkflowWithOptions(weekly.Workflow, workflow.RegisterOptions{Name: weekly.WorkflowName})
	w.RegisterActivityWithOptions(acts.RunWeekly, activity.RegisterOptions{Name: weekly.ActivityRunWeekly})
	return w
}
