package training

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/mentalgym-backend/internal/data/repos"
	"github.com/yungbote/mentalgym-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/services"
)

// committedFixture runs against committed rows so goroutines see each other.
// It needs Postgres row locks.
func committedFixture(t *testing.T) (*gorm.DB, repos.Set, Usecases) {
	t.Helper()
	if os.Getenv("TEST_POSTGRES_DSN") == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	uc := New(UsecasesDeps{
		DB:          db,
		Log:         log,
		Config:      DefaultConfig(),
		Jobs:        services.NewJobService(log, set.JobRun, nil),
		Users:       set.User,
		Modes:       set.PracticeMode,
		Sessions:    set.TrainingSession,
		Progress:    set.UserModeProgress,
		Completions: set.SessionCompletion,
		Usage:       set.ExchangeUsage,
		Dimensions:  set.SkillDimension,
		Scores:      set.DrillScore,
	})
	return db, set, uc
}

func cleanupUser(t *testing.T, db *gorm.DB, userID, modeID uuid.UUID) {
	t.Cleanup(func() {
		db.Where("user_id = ?", userID).Delete(&types.SessionCompletion{})
		db.Where("user_id = ?", userID).Delete(&types.UserModeProgress{})
		db.Where("user_id = ?", userID).Delete(&types.TrainingSession{})
		db.Where("user_id = ?", userID).Delete(&types.ExchangeUsage{})
		db.Where("owner_user_id = ?", userID).Delete(&types.JobRun{})
		db.Where("id = ?", modeID).Delete(&types.PracticeMode{})
		db.Where("id = ?", userID).Delete(&types.User{})
	})
}

func completeConcurrently(t *testing.T, uc Usecases, userID uuid.UUID, sessions []*types.TrainingSession) []*CompletionResult {
	t.Helper()
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out []*CompletionResult
	)
	for _, s := range sessions {
		wg.Add(1)
		go func(sessionID uuid.UUID) {
			defer wg.Done()
			res, err := uc.CompleteSession(context.Background(), SessionCompletedEvent{
				UserID:          userID,
				SessionID:       sessionID,
				DrillsCompleted: 2,
				DurationSeconds: 60,
			})
			assert.NoError(t, err)
			mu.Lock()
			out = append(out, res)
			mu.Unlock()
		}(s.ID)
	}
	wg.Wait()
	return out
}

func TestCompleteSessionConcurrentCompletionsAllCount(t *testing.T) {
	db, set, uc := committedFixture(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, db, "unlimited")
	mode := testutil.SeedPracticeMode(t, db, "negotiation")
	cleanupUser(t, db, user.ID, mode.ID)

	const n = 9
	sessions := make([]*types.TrainingSession, 0, n)
	for i := 0; i < n; i++ {
		s, err := uc.StartSession(ctx, user.ID, mode.ID)
		require.NoError(t, err)
		sessions = append(sessions, s)
	}
	results := completeConcurrently(t, uc, user.ID, sessions)
	require.Len(t, results, n)

	leveled := 0
	for _, r := range results {
		if r != nil && r.LeveledUp {
			leveled++
		}
	}
	threshold := uc.deps.Config.LevelUpSessions
	assert.Equal(t, n/threshold, leveled)

	rows, err := set.UserModeProgress.ListByUser(dbctx.Context{Ctx: ctx}, user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, n, rows[0].TotalSessions)
	assert.Equal(t, 2*n, rows[0].TotalDrillsCompleted)
	assert.Equal(t, 1+n/threshold, rows[0].CurrentLevel)
	assert.Equal(t, n%threshold, rows[0].SessionsAtCurrentLevel)
}

func TestTeaserQueuedOnceWhenThresholdCompletionsRace(t *testing.T) {
	db, _, uc := committedFixture(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, db, "free")
	mode := testutil.SeedPracticeMode(t, db, "pitch")
	cleanupUser(t, db, user.ID, mode.ID)

	// Four sessions done; the fifth and sixth finish together.
	before := uc.deps.Config.TeaserAtSessions - 1
	testutil.SeedCompletedSessions(t, db, user.ID, mode.ID, before, time.Now().UTC().Add(-time.Hour))
	var sessions []*types.TrainingSession
	for i := 0; i < 2; i++ {
		s, err := uc.StartSession(ctx, user.ID, mode.ID)
		require.NoError(t, err)
		sessions = append(sessions, s)
	}
	results := completeConcurrently(t, uc, user.ID, sessions)

	queued := 0
	for _, r := range results {
		if r != nil && r.TeaserQueued {
			queued++
		}
	}
	assert.Equal(t, 1, queued)

	var jobs int64
	require.NoError(t, db.Model(&types.JobRun{}).
		Where("owner_user_id = ? AND job_type = ?", user.ID, types.JobTypeTeaserEmail).
		Count(&jobs).Error)
	assert.EqualValues(t, 1, jobs)
}
