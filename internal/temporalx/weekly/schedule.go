package weekly

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

// EnsureCron starts the cron workflow unless it is already running.
func EnsureCron(ctx context.Context, log *logger.Logger, tc temporalsdkclient.Client, taskQueue string) error {
	if tc == nil {
		return fmt.Errorf("weekly: temporal client is not configured")
	}
	run, err := tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:                    WorkflowID,
		TaskQueue:             taskQueue,
		CronSchedule:          CronSchedule,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, WorkflowName)
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			log.Info("Weekly report cron already scheduled", "workflow_id", WorkflowID)
			return nil
		}
		return fmt.Errorf("weekly: start cron workflow: %w", err)
	}
	log.Info("Weekly report cron scheduled", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "schedule", CronSchedule)
	return nil
}
