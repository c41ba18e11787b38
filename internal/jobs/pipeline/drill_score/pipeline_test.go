package drill_score

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/mentalgym-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mentalgym-backend/internal/domain"
	jobrt "github.com/yungbote/mentalgym-backend/internal/jobs/runtime"
	"github.com/yungbote/mentalgym-backend/internal/modules/training"
)

type fakeScorer struct {
	got training.DrillResponse
	err error
}

func (f *fakeScorer) ScoreResponse(ctx context.Context, r training.DrillResponse) (*types.DrillScore, error) {
	f.got = r
	if f.err != nil {
		return nil, f.err
	}
	return &types.DrillScore{ID: uuid.New(), OverallScore: 7}, nil
}

func newJobContext(t *testing.T, p *Pipeline, payload any, attempts int) *jobrt.Context {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	policy := p.RetryPolicy()
	job := &types.JobRun{
		ID:          uuid.New(),
		JobType:     p.Type(),
		Status:      types.JobStatusRunning,
		Attempts:    attempts,
		MaxAttempts: policy.MaxAttempts,
		Payload:     datatypes.JSON(raw),
	}
	return jobrt.NewContext(context.Background(), nil, job, nil, testutil.Logger(t), policy)
}

func TestRunScoresPayload(t *testing.T) {
	scorer := &fakeScorer{}
	p := New(testutil.Logger(t), scorer)
	userID, sessionID := uuid.New(), uuid.New()
	jc := newJobContext(t, p, map[string]any{
		"user_id":          userID.String(),
		"session_id":       sessionID.String(),
		"drill_type":       "direct_answer",
		"response_text":    "Yes. We ship Friday.",
		"response_time_ms": 4200,
		"trace_id":         "abc",
	}, 1)

	if err := p.Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if jc.Job.Status != types.JobStatusSucceeded {
		t.Fatalf("status = %s (%s)", jc.Job.Status, jc.Job.Error)
	}
	if scorer.got.UserID != userID || scorer.got.SessionID != sessionID || scorer.got.ResponseTimeMS != 4200 {
		t.Fatalf("scorer got %+v", scorer.got)
	}
	if scorer.got.JobRunID != jc.Job.ID {
		t.Fatalf("scorer got job %s, want %s", scorer.got.JobRunID, jc.Job.ID)
	}
}

func TestRunSchedulesRetry(t *testing.T) {
	p := New(testutil.Logger(t), &fakeScorer{err: errors.New("model timeout")})
	payload := map[string]any{
		"user_id":    uuid.NewString(),
		"session_id": uuid.NewString(),
		"drill_type": "direct_answer",
	}

	jc := newJobContext(t, p, payload, 1)
	_ = p.Run(jc)
	if jc.Job.Status != types.JobStatusFailed || jc.Job.NextAttemptAt == nil {
		t.Fatalf("expected a scheduled retry, got status=%s next=%v", jc.Job.Status, jc.Job.NextAttemptAt)
	}

	last := newJobContext(t, p, payload, 3)
	_ = p.Run(last)
	if last.Job.Status != types.JobStatusFailed || last.Job.NextAttemptAt != nil {
		t.Fatalf("expected final failure without retry, got next=%v", last.Job.NextAttemptAt)
	}
}

func TestRunRejectsBadPayload(t *testing.T) {
	scorer := &fakeScorer{}
	p := New(testutil.Logger(t), scorer)
	jc := newJobContext(t, p, map[string]any{"drill_type": "direct_answer"}, 1)
	_ = p.Run(jc)
	if jc.Job.Status != types.JobStatusFailed || jc.Job.Stage != "validate" {
		t.Fatalf("status=%s stage=%s", jc.Job.Status, jc.Job.Stage)
	}
	if scorer.got.DrillType != "" {
		t.Fatalf("scorer should not be called")
	}
}
