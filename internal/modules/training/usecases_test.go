package training

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/mentalgym-backend/internal/data/repos"
	"github.com/yungbote/mentalgym-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/domain/scoring"
	"github.com/yungbote/mentalgym-backend/internal/platform/apierr"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/services"
)

type fixture struct {
	tx   *gorm.DB
	set  repos.Set
	uc   Usecases
	mode *types.PracticeMode
}

func newFixture(t *testing.T, scorer Scorer) *fixture {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	set := repos.NewSet(tx, log)
	uc := New(UsecasesDeps{
		DB:          tx,
		Log:         log,
		Config:      DefaultConfig(),
		Jobs:        services.NewJobService(log, set.JobRun, nil),
		Scorer:      scorer,
		Users:       set.User,
		Modes:       set.PracticeMode,
		Sessions:    set.TrainingSession,
		Progress:    set.UserModeProgress,
		Completions: set.SessionCompletion,
		Usage:       set.ExchangeUsage,
		Dimensions:  set.SkillDimension,
		Scores:      set.DrillScore,
	})
	return &fixture{tx: tx, set: set, uc: uc, mode: testutil.SeedPracticeMode(t, tx, "interview")}
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var ae *apierr.Error
	require.True(t, errors.As(err, &ae), "expected *apierr.Error, got %v", err)
	assert.Equal(t, status, ae.Status)
	assert.Equal(t, code, ae.Code)
}

func (f *fixture) completeOne(t *testing.T, userID uuid.UUID) *CompletionResult {
	t.Helper()
	ctx := context.Background()
	s, err := f.uc.StartSession(ctx, userID, f.mode.ID)
	require.NoError(t, err)
	res, err := f.uc.CompleteSession(ctx, SessionCompletedEvent{
		UserID:          userID,
		SessionID:       s.ID,
		DrillsCompleted: 3,
		DurationSeconds: 420,
		DrillScores:     []types.DrillScoreSummary{{DrillType: "direct_answer", Score: 6.5}},
	})
	require.NoError(t, err)
	return res
}

func TestCompleteSessionUpdatesProgressAndRecordsCompletion(t *testing.T) {
	f := newFixture(t, nil)
	user := testutil.SeedUser(t, f.tx, "unlimited")

	var last *CompletionResult
	for i := 0; i < 3; i++ {
		last = f.completeOne(t, user.ID)
	}
	require.True(t, last.LeveledUp)
	assert.Equal(t, 2, last.Progress.CurrentLevel)
	assert.Equal(t, 0, last.Progress.SessionsAtCurrentLevel)
	assert.Equal(t, 3, last.Progress.TotalSessions)
	assert.Equal(t, 9, last.Progress.TotalDrillsCompleted)
	assert.EqualValues(t, 1260, last.Progress.TotalTimeSeconds)
	assert.Equal(t, types.SessionStatusCompleted, last.Session.Status)

	completions, err := f.set.SessionCompletion.ListByUser(dbctx.Context{Ctx: context.Background()}, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, completions, 3)
	leveled := 0
	for _, c := range completions {
		if c.LeveledUp {
			leveled++
			assert.Equal(t, 1, c.LevelBefore)
			assert.Equal(t, 2, c.LevelAfter)
		}
	}
	assert.Equal(t, 1, leveled)
}

func TestCompleteSessionRejectsTerminalSessions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.tx, "free")
	s, err := f.uc.StartSession(ctx, user.ID, f.mode.ID)
	require.NoError(t, err)

	_, err = f.uc.AbandonSession(ctx, user.ID, s.ID)
	require.NoError(t, err)

	_, err = f.uc.CompleteSession(ctx, SessionCompletedEvent{UserID: user.ID, SessionID: s.ID})
	requireAPIError(t, err, http.StatusConflict, "session_not_active")

	_, err = f.uc.AbandonSession(ctx, user.ID, s.ID)
	requireAPIError(t, err, http.StatusConflict, "session_not_active")

	progress, err := f.uc.ListProgress(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 0, progress[0].TotalSessions)
}

func TestCompleteSessionOtherUsersSession(t *testing.T) {
	f := newFixture(t, nil)
	owner := testutil.SeedUser(t, f.tx, "free")
	other := testutil.SeedUser(t, f.tx, "free")
	s, err := f.uc.StartSession(context.Background(), owner.ID, f.mode.ID)
	require.NoError(t, err)

	_, err = f.uc.CompleteSession(context.Background(), SessionCompletedEvent{UserID: other.ID, SessionID: s.ID})
	requireAPIError(t, err, http.StatusNotFound, "session_not_found")
}

func TestStartSessionLevelLockedByPlan(t *testing.T) {
	f := newFixture(t, nil)
	user := testutil.SeedUser(t, f.tx, "free")
	_, err := f.set.UserModeProgress.Update(dbctx.Context{Ctx: context.Background()}, user.ID, f.mode.ID, func(p *types.UserModeProgress) error {
		p.CurrentLevel = 3
		return nil
	})
	require.NoError(t, err)

	_, err = f.uc.StartSession(context.Background(), user.ID, f.mode.ID)
	requireAPIError(t, err, http.StatusForbidden, "level_locked")
	assert.ErrorIs(t, err, ErrLevelLocked)
}

func TestTeaserQueuedOnlyAtFifthSessionForFreePlan(t *testing.T) {
	f := newFixture(t, nil)
	free := testutil.SeedUser(t, f.tx, "free")
	pro := testutil.SeedUser(t, f.tx, "pro")

	for i := 1; i <= 6; i++ {
		res := f.completeOne(t, free.ID)
		assert.Equal(t, i == 5, res.TeaserQueued, "session %d", i)
	}
	for i := 1; i <= 5; i++ {
		res := f.completeOne(t, pro.ID)
		assert.False(t, res.TeaserQueued, "paid plan session %d", i)
	}

	has, err := f.set.JobRun.ExistsRunnable(dbctx.Context{Ctx: context.Background()}, free.ID, types.JobTypeTeaserEmail)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRecordExchangeEnforcesDailyLimit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.tx, "free")
	s, err := f.uc.StartSession(ctx, user.ID, f.mode.ID)
	require.NoError(t, err)

	limit := f.uc.deps.Plans.Get("free").DailyExchanges
	for i := 0; i < limit; i++ {
		require.NoError(t, f.uc.RecordExchange(dbctx.Context{Ctx: ctx}, user.ID, s.ID))
	}
	err = f.uc.RecordExchange(dbctx.Context{Ctx: ctx}, user.ID, s.ID)
	requireAPIError(t, err, http.StatusTooManyRequests, "daily_limit_reached")
	assert.ErrorIs(t, err, ErrDailyLimit)

	session, err := f.set.TrainingSession.GetByID(dbctx.Context{Ctx: ctx}, s.ID)
	require.NoError(t, err)
	assert.Equal(t, limit, session.ExchangeCount)
}

func TestSubmitResponseReservesDailyExchanges(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.tx, "free")
	first, err := f.uc.StartSession(ctx, user.ID, f.mode.ID)
	require.NoError(t, err)
	second, err := f.uc.StartSession(ctx, user.ID, f.mode.ID)
	require.NoError(t, err)

	limit := f.uc.deps.Plans.Get("free").DailyExchanges
	require.Greater(t, limit, 1)
	accepted := 0
	for i := 0; i < 3*limit; i++ {
		sessionID := first.ID
		if i%2 == 1 {
			sessionID = second.ID
		}
		_, err := f.uc.SubmitResponse(ctx, DrillResponse{
			UserID: user.ID, SessionID: sessionID, DrillType: "direct_answer", ResponseText: "Yes.",
		})
		if err != nil {
			requireAPIError(t, err, http.StatusTooManyRequests, "daily_limit_reached")
			continue
		}
		accepted++
	}
	assert.Equal(t, limit, accepted)

	var jobs int64
	require.NoError(t, f.tx.Model(&types.JobRun{}).
		Where("owner_user_id = ? AND job_type = ?", user.ID, types.JobTypeDrillScore).
		Count(&jobs).Error)
	assert.EqualValues(t, limit, jobs, "rejected submissions must not leave a job behind")

	dbc := dbctx.Context{Ctx: ctx}
	a, err := f.set.TrainingSession.GetByID(dbc, first.ID)
	require.NoError(t, err)
	b, err := f.set.TrainingSession.GetByID(dbc, second.ID)
	require.NoError(t, err)
	assert.Equal(t, limit, a.ExchangeCount+b.ExchangeCount)
}

func TestSubmitResponseUnlimitedPlan(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.tx, "unlimited")
	s, err := f.uc.StartSession(ctx, user.ID, f.mode.ID)
	require.NoError(t, err)
	require.Equal(t, 0, f.uc.deps.Plans.Get("unlimited").DailyExchanges)

	for i := 0; i < 25; i++ {
		_, err := f.uc.SubmitResponse(ctx, DrillResponse{
			UserID: user.ID, SessionID: s.ID, DrillType: "direct_answer", ResponseText: "Yes.",
		})
		require.NoError(t, err)
	}
}

func TestNewWithoutLogger(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	set := repos.NewSet(tx, testutil.Logger(t))
	uc := New(UsecasesDeps{
		DB:       tx,
		Users:    set.User,
		Modes:    set.PracticeMode,
		Sessions: set.TrainingSession,
		Progress: set.UserModeProgress,
	})
	user := testutil.SeedUser(t, tx, "free")
	mode := testutil.SeedPracticeMode(t, tx, "pitch")
	_, err := uc.StartSession(context.Background(), user.ID, mode.ID)
	require.NoError(t, err)
}

type stubScorer struct {
	assessment *scoring.Assessment
	calls      int
}

func (s *stubScorer) Score(ctx context.Context, req ScoreRequest) (*scoring.Assessment, error) {
	s.calls++
	return s.assessment, nil
}

func flag(b bool) *bool { return &b }

func validDirectAnswer() *scoring.Assessment {
	clarity := 3.0
	return &scoring.Assessment{
		OverallScore: 4.5,
		Criteria: []scoring.CriterionValue{
			{Key: "answered_question", Flag: flag(true)},
			{Key: "hedged", Flag: flag(true)},
			{Key: "concise", Flag: flag(false)},
			{Key: "clarity", Value: &clarity},
		},
		Dimensions: []scoring.DimensionScore{
			{Key: "test_directness", Score: 3, Suggestion: "Lead with the answer."},
		},
	}
}

func TestScoreResponseStoresScoreCriteriaAndObservations(t *testing.T) {
	scorer := &stubScorer{assessment: validDirectAnswer()}
	f := newFixture(t, scorer)
	ctx := context.Background()
	testutil.SeedDimension(t, f.tx, "test_directness", "Directness", scoring.CategoryCommunication)
	user := testutil.SeedUser(t, f.tx, "pro")
	s, err := f.uc.StartSession(ctx, user.ID, f.mode.ID)
	require.NoError(t, err)

	score, err := f.uc.ScoreResponse(ctx, DrillResponse{
		UserID:       user.ID,
		SessionID:    s.ID,
		DrillType:    "direct_answer",
		ResponseText: "I think maybe we could ship it",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, scorer.calls)
	assert.Equal(t, 7, score.WordCount)

	dbc := dbctx.Context{Ctx: ctx}
	spots, err := f.set.Observation.ListBlindSpots(dbc, user.ID)
	require.NoError(t, err)
	require.Len(t, spots, 1)
	assert.True(t, spots[0].IsSignal())

	rows, err := f.set.Observation.ListCriterionResults(dbc, user.ID, []string{"hedged", "answered_question"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		switch r.CriterionKey {
		case "hedged":
			assert.False(t, r.Passed)
		case "answered_question":
			assert.True(t, r.Passed)
		}
	}

	// Exchanges are counted when a response is submitted, not when it is scored.
	session, err := f.set.TrainingSession.GetByID(dbc, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, session.ExchangeCount)
}

func TestRecordScoreWritesOncePerJob(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	testutil.SeedDimension(t, f.tx, "test_directness", "Directness", scoring.CategoryCommunication)
	user := testutil.SeedUser(t, f.tx, "pro")
	s, err := f.uc.StartSession(ctx, user.ID, f.mode.ID)
	require.NoError(t, err)
	r := DrillResponse{
		UserID:       user.ID,
		SessionID:    s.ID,
		DrillType:    "direct_answer",
		ResponseText: "We ship Friday",
		JobRunID:     uuid.New(),
	}

	first, err := f.uc.RecordScore(ctx, r, validDirectAnswer())
	require.NoError(t, err)
	retry, err := f.uc.RecordScore(ctx, r, validDirectAnswer())
	require.NoError(t, err)
	assert.Equal(t, first.ID, retry.ID)

	dbc := dbctx.Context{Ctx: ctx}
	n, err := f.set.DrillScore.CountByUser(dbc, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	spots, err := f.set.Observation.ListBlindSpots(dbc, user.ID)
	require.NoError(t, err)
	assert.Len(t, spots, 1)

	// A different job is a different exchange.
	r.JobRunID = uuid.New()
	_, err = f.uc.RecordScore(ctx, r, validDirectAnswer())
	require.NoError(t, err)
	n, err = f.set.DrillScore.CountByUser(dbc, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestRecordScoreRejectsInvalidAssessments(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	testutil.SeedDimension(t, f.tx, "test_directness", "Directness", scoring.CategoryCommunication)
	user := testutil.SeedUser(t, f.tx, "pro")
	s, err := f.uc.StartSession(ctx, user.ID, f.mode.ID)
	require.NoError(t, err)
	r := DrillResponse{UserID: user.ID, SessionID: s.ID, DrillType: "direct_answer", ResponseText: "ok"}

	missing := validDirectAnswer()
	missing.Criteria = missing.Criteria[:2]
	_, err = f.uc.RecordScore(ctx, r, missing)
	requireAPIError(t, err, http.StatusUnprocessableEntity, "invalid_assessment")

	unknownDim := validDirectAnswer()
	unknownDim.Dimensions = []scoring.DimensionScore{{Key: "no_such_dimension", Score: 5}}
	_, err = f.uc.RecordScore(ctx, r, unknownDim)
	requireAPIError(t, err, http.StatusUnprocessableEntity, "invalid_assessment")

	n, err := f.set.DrillScore.CountByUser(dbctx.Context{Ctx: ctx}, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestSubmitResponseQueuesScoringJob(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user := testutil.SeedUser(t, f.tx, "pro")
	s, err := f.uc.StartSession(ctx, user.ID, f.mode.ID)
	require.NoError(t, err)

	job, err := f.uc.SubmitResponse(ctx, DrillResponse{
		UserID: user.ID, SessionID: s.ID, DrillType: "pressure_hold", ResponseText: "No.",
	})
	require.NoError(t, err)
	assert.Equal(t, types.JobTypeDrillScore, job.JobType)
	assert.Equal(t, types.JobStatusQueued, job.Status)

	_, err = f.uc.SubmitResponse(ctx, DrillResponse{
		UserID: user.ID, SessionID: s.ID, DrillType: "interpretive_dance", ResponseText: "x",
	})
	requireAPIError(t, err, http.StatusBadRequest, "unknown_drill_type")
}
