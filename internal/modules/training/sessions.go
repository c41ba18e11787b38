package training

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/domain/training"
	"github.com/yungbote/mentalgym-backend/internal/observability"
	"github.com/yungbote/mentalgym-backend/internal/platform/apierr"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/services"
)

var (
	ErrLevelLocked      = errors.New("current level is above the plan's limit")
	ErrDailyLimit       = errors.New("daily exchange limit reached")
	ErrSessionNotActive = errors.New("session is not active")
)

// SessionCompletedEvent is emitted by the client when a session ends normally.
type SessionCompletedEvent struct {
	UserID          uuid.UUID                 `json:"user_id"`
	SessionID       uuid.UUID                 `json:"session_id"`
	DrillsCompleted int                       `json:"drills_completed"`
	DurationSeconds int                       `json:"duration_seconds"`
	DrillScores     []types.DrillScoreSummary `json:"drill_scores"`
}

type CompletionResult struct {
	Session      *types.TrainingSession  `json:"session"`
	Progress     *types.UserModeProgress `json:"progress"`
	LeveledUp    bool                    `json:"leveled_up"`
	TeaserQueued bool                    `json:"-"`
}

func (u Usecases) StartSession(ctx context.Context, userID, modeID uuid.UUID) (*types.TrainingSession, error) {
	dbc := dbctx.Context{Ctx: ctx}
	user, err := u.deps.Users.GetByID(dbc, userID)
	if err != nil {
		return nil, apierr.From(err, "start_session_failed")
	}
	mode, err := u.deps.Modes.GetByID(dbc, modeID)
	if err != nil {
		return nil, apierr.From(err, "start_session_failed")
	}
	if !mode.Active {
		return nil, apierr.New(http.StatusNotFound, "practice_mode_not_found", fmt.Errorf("practice mode %s", modeID))
	}
	progress, err := u.deps.Progress.Ensure(dbc, userID, modeID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "start_session_failed", err)
	}
	plan := u.deps.Plans.Get(user.Plan)
	if progress.CurrentLevel > plan.MaxLevel {
		return nil, apierr.New(http.StatusForbidden, "level_locked",
			fmt.Errorf("%w: level %d, plan %s allows %d", ErrLevelLocked, progress.CurrentLevel, plan.Key, plan.MaxLevel))
	}

	s := &types.TrainingSession{
		UserID:         userID,
		PracticeModeID: modeID,
		Status:         types.SessionStatusActive,
		LevelAtStart:   progress.CurrentLevel,
		StartedAt:      time.Now().UTC(),
	}
	if err := u.deps.Sessions.Create(dbc, s); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "start_session_failed", err)
	}
	observability.Current().IncSession("started")
	u.deps.Log.Info("Training session started", "user_id", userID, "session_id", s.ID, "level", s.LevelAtStart)
	return s, nil
}

func (u Usecases) ownedSession(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.TrainingSession, error) {
	s, err := u.deps.Sessions.GetByID(dbc, sessionID)
	if err != nil {
		return nil, apierr.From(err, "session_lookup_failed")
	}
	if s.UserID != userID {
		return nil, apierr.New(http.StatusNotFound, "session_not_found", apierr.ErrNotFound)
	}
	return s, nil
}

// RecordExchange reserves one exchange in an active session against the
// user's daily plan limit: the user's count for today and the session's
// exchange count both go up. Pass the caller's transaction in dbc so a later
// failure releases the reservation.
func (u Usecases) RecordExchange(dbc dbctx.Context, userID, sessionID uuid.UUID) error {
	s, err := u.ownedSession(dbc, userID, sessionID)
	if err != nil {
		return err
	}
	if !s.IsActive() {
		return apierr.New(http.StatusConflict, "session_not_active", ErrSessionNotActive)
	}
	user, err := u.deps.Users.GetByID(dbc, userID)
	if err != nil {
		return apierr.From(err, "record_exchange_failed")
	}
	limit := u.deps.Plans.Get(user.Plan).DailyExchanges
	day := training.DayKey(time.Now(), u.deps.Config.DayLocation)
	ok, err := u.deps.Usage.Reserve(dbc, userID, day, limit)
	if err != nil {
		return apierr.New(http.StatusInternalServerError, "record_exchange_failed", err)
	}
	if !ok {
		return apierr.New(http.StatusTooManyRequests, "daily_limit_reached",
			fmt.Errorf("%w: %d per day on plan %s", ErrDailyLimit, limit, user.Plan))
	}
	moved, err := u.deps.Sessions.IncrementExchangeCount(dbc, sessionID)
	if err != nil {
		return apierr.New(http.StatusInternalServerError, "record_exchange_failed", err)
	}
	if !moved {
		return apierr.New(http.StatusConflict, "session_not_active", ErrSessionNotActive)
	}
	return nil
}

func asAPIError(err error, code string) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apierr.New(http.StatusInternalServerError, code, err)
}

// CompleteSession moves an active session to completed and, in the same
// transaction, writes the completion record, updates progress under a row
// lock and queues the teaser when this is the user's teaser session.
func (u Usecases) CompleteSession(ctx context.Context, ev SessionCompletedEvent) (*CompletionResult, error) {
	if ev.DrillsCompleted < 0 || ev.DurationSeconds < 0 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_completion", fmt.Errorf("negative counts"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := u.ownedSession(dbc, ev.UserID, ev.SessionID); err != nil {
		return nil, err
	}

	var out CompletionResult
	err := u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tdbc := dbctx.Context{Ctx: ctx, Tx: tx}
		// Completions of one user run one at a time, so the completed count
		// read below is exact.
		if _, err := u.deps.Users.LockByID(tdbc, ev.UserID); err != nil {
			return err
		}
		now := time.Now().UTC()
		moved, err := u.deps.Sessions.Transition(tdbc, ev.SessionID, types.SessionStatusActive, map[string]any{
			"status":           types.SessionStatusCompleted,
			"ended_at":         now,
			"duration_seconds": ev.DurationSeconds,
		})
		if err != nil {
			return err
		}
		if !moved {
			return apierr.New(http.StatusConflict, "session_not_active", ErrSessionNotActive)
		}
		session, err := u.deps.Sessions.GetByID(tdbc, ev.SessionID)
		if err != nil {
			return err
		}
		out.Session = session

		scores := ev.DrillScores
		if scores == nil {
			scores = []types.DrillScoreSummary{}
		}
		raw, err := json.Marshal(scores)
		if err != nil {
			return err
		}
		completion := &types.SessionCompletion{
			SessionID:       session.ID,
			UserID:          session.UserID,
			PracticeModeID:  session.PracticeModeID,
			DrillsCompleted: ev.DrillsCompleted,
			DurationSeconds: ev.DurationSeconds,
			DrillScores:     datatypes.JSON(raw),
			CreatedAt:       now,
		}

		progress, err := u.deps.Progress.Update(tdbc, session.UserID, session.PracticeModeID, func(p *types.UserModeProgress) error {
			completion.LevelBefore = p.CurrentLevel
			out.LeveledUp = ApplyCompletion(p, Completion{
				SessionID:       session.ID,
				DrillsCompleted: ev.DrillsCompleted,
				DurationSeconds: ev.DurationSeconds,
				At:              now,
			}, u.deps.Config)
			completion.LevelAfter = p.CurrentLevel
			completion.LeveledUp = out.LeveledUp
			return nil
		})
		if err != nil {
			return fmt.Errorf("update progress: %w", err)
		}
		out.Progress = progress

		if err := u.deps.Completions.Create(tdbc, completion); err != nil {
			return fmt.Errorf("record completion: %w", err)
		}

		queued, err := u.maybeQueueTeaser(tdbc, ev.UserID)
		if err != nil {
			return fmt.Errorf("teaser check: %w", err)
		}
		out.TeaserQueued = queued
		return nil
	})
	if err != nil {
		return nil, asAPIError(err, "complete_session_failed")
	}

	observability.Current().IncSession("completed")
	if out.LeveledUp {
		observability.Current().IncLevelUp(out.Progress.CurrentLevel)
	}
	u.deps.Log.Info("Training session completed",
		"user_id", ev.UserID,
		"session_id", ev.SessionID,
		"level", out.Progress.CurrentLevel,
		"leveled_up", out.LeveledUp,
		"teaser_queued", out.TeaserQueued,
	)
	return &out, nil
}

// maybeQueueTeaser enqueues the teaser job when the user's completed session
// count is exactly the teaser threshold and the plan is not paid. dbc must be
// the completion transaction holding the user lock.
func (u Usecases) maybeQueueTeaser(dbc dbctx.Context, userID uuid.UUID) (bool, error) {
	count, err := u.deps.Sessions.CountCompleted(dbc, userID)
	if err != nil {
		return false, err
	}
	if count != int64(u.deps.Config.TeaserAtSessions) {
		return false, nil
	}
	user, err := u.deps.Users.GetByID(dbc, userID)
	if err != nil {
		return false, err
	}
	if u.deps.Plans.IsPaid(user.Plan) || u.deps.Jobs == nil {
		return false, nil
	}
	_, queued, err := u.deps.Jobs.EnqueueIfNotRunnable(dbc, services.EnqueueRequest{
		OwnerUserID: userID,
		JobType:     types.JobTypeTeaserEmail,
		EntityType:  "user",
		EntityID:    &userID,
		Payload:     map[string]any{"user_id": userID.String()},
	})
	return queued, err
}

func (u Usecases) AbandonSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.TrainingSession, error) {
	dbc := dbctx.Context{Ctx: ctx}
	s, err := u.ownedSession(dbc, userID, sessionID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	duration := int(now.Sub(s.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	moved, err := u.deps.Sessions.Transition(dbc, sessionID, types.SessionStatusActive, map[string]any{
		"status":           types.SessionStatusAbandoned,
		"ended_at":         now,
		"duration_seconds": duration,
	})
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "abandon_session_failed", err)
	}
	if !moved {
		return nil, apierr.New(http.StatusConflict, "session_not_active", ErrSessionNotActive)
	}
	observability.Current().IncSession("abandoned")
	return u.deps.Sessions.GetByID(dbc, sessionID)
}

func (u Usecases) ListProgress(ctx context.Context, userID uuid.UUID) ([]*types.UserModeProgress, error) {
	rows, err := u.deps.Progress.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_progress_failed", err)
	}
	return rows, nil
}
