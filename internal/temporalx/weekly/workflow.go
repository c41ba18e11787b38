package weekly

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/mentalgym-backend/internal/modules/notifications"
)

// Workflow runs one weekly report. It is started with CronSchedule, so each
// execution is one Sunday.
func Workflow(ctx workflow.Context) (notifications.WeeklyRunSummary, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Hour,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Minute,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	})

	var out notifications.WeeklyRunSummary
	err := workflow.ExecuteActivity(ctx, ActivityRunWeekly, workflow.Now(ctx)).Get(ctx, &out)
	return out, err
}
