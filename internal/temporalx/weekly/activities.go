package weekly

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/yungbote/mentalgym-backend/internal/modules/notifications"
)

type Runner interface {
	RunWeekly(ctx context.Context, now time.Time) (*notifications.WeeklyRunSummary, error)
}

type Activities struct {
	Runner Runner
}

// RunWeekly is safe to retry: users already recorded for the week are skipped.
func (a *Activities) RunWeekly(ctx context.Context, scheduledAt time.Time) (notifications.WeeklyRunSummary, error) {
	if a == nil || a.Runner == nil {
		return notifications.WeeklyRunSummary{}, fmt.Errorf("weekly: activity not configured")
	}
	summary, err := a.Runner.RunWeekly(ctx, scheduledAt)
	if err != nil {
		return notifications.WeeklyRunSummary{}, err
	}
	activity.GetLogger(ctx).Info("Weekly report run complete",
		"run_id", summary.RunID, "sent", summary.Sent, "failed", summary.Failed)
	return *summary, nil
}
