package weekly

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/yungbote/mentalgym-backend/internal/modules/notifications"
)

type fakeRunner struct {
	calls int
	fail  int
}

func (f *fakeRunner) RunWeekly(ctx context.Context, now time.Time) (*notifications.WeeklyRunSummary, error) {
	f.calls++
	if f.calls <= f.fail {
		return nil, errors.New("database unavailable")
	}
	return &notifications.WeeklyRunSummary{RunID: "01J", Week: 42, Year: 2026, Eligible: 3, Sent: 2, Skipped: 1}, nil
}

func newEnv(t *testing.T, runner Runner) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := &Activities{Runner: runner}
	env.RegisterActivityWithOptions(acts.RunWeekly, activity.RegisterOptions{Name: ActivityRunWeekly})
	return env
}

func TestWorkflowReturnsSummary(t *testing.T) {
	runner := &fakeRunner{}
	env := newEnv(t, runner)
	env.ExecuteWorkflow(Workflow)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var out notifications.WeeklyRunSummary
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, 2, out.Sent)
	require.Equal(t, 42, out.Week)
	require.Equal(t, 1, runner.calls)
}

func TestWorkflowRetriesActivity(t *testing.T) {
	runner := &fakeRunner{fail: 1}
	env := newEnv(t, runner)
	env.ExecuteWorkflow(Workflow)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	require.Equal(t, 2, runner.calls)
}
