package training

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/domain/scoring"
	"github.com/yungbote/mentalgym-backend/internal/observability"
	"github.com/yungbote/mentalgym-backend/internal/platform/apierr"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/services"
)

// ScoreRequest is what the scorer sees of one response.
type ScoreRequest struct {
	DrillType    string
	DrillPhase   string
	Prompt       string
	ResponseText string
	Schema       scoring.DrillSchema
	Dimensions   []*types.SkillDimension
}

// Scorer grades a response. Implementations call out to a model; the
// returned assessment is validated before anything is stored.
type Scorer interface {
	Score(ctx context.Context, req ScoreRequest) (*scoring.Assessment, error)
}

type DrillResponse struct {
	UserID         uuid.UUID `json:"user_id"`
	SessionID      uuid.UUID `json:"session_id"`
	DrillType      string    `json:"drill_type"`
	DrillPhase     string    `json:"drill_phase"`
	Prompt         string    `json:"prompt"`
	ResponseText   string    `json:"response_text"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	IsIteration    bool      `json:"is_iteration"`
	// JobRunID is set by the scoring job; a score is written at most once per job.
	JobRunID uuid.UUID `json:"-"`
}

func (r DrillResponse) payload() map[string]any {
	return map[string]any{
		"user_id":          r.UserID.String(),
		"session_id":       r.SessionID.String(),
		"drill_type":       r.DrillType,
		"drill_phase":      r.DrillPhase,
		"prompt":           r.Prompt,
		"response_text":    r.ResponseText,
		"response_time_ms": r.ResponseTimeMS,
		"is_iteration":     r.IsIteration,
	}
}

// SubmitResponse validates the response against its session, records the
// exchange against the daily plan limit and queues the response for scoring.
// The exchange and the job commit together.
func (u Usecases) SubmitResponse(ctx context.Context, r DrillResponse) (*types.JobRun, error) {
	if strings.TrimSpace(r.ResponseText) == "" {
		return nil, apierr.New(http.StatusBadRequest, "empty_response", fmt.Errorf("response_text is required"))
	}
	if _, err := scoring.SchemaFor(r.DrillType); err != nil {
		return nil, apierr.New(http.StatusBadRequest, "unknown_drill_type", err)
	}
	if u.deps.Jobs == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "scoring_unavailable", fmt.Errorf("job queue not configured"))
	}
	var job *types.JobRun
	err := u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := u.RecordExchange(dbc, r.UserID, r.SessionID); err != nil {
			return err
		}
		sessionID := r.SessionID
		var err error
		job, err = u.deps.Jobs.Enqueue(dbc, services.EnqueueRequest{
			OwnerUserID: r.UserID,
			JobType:     types.JobTypeDrillScore,
			EntityType:  "training_session",
			EntityID:    &sessionID,
			Payload:     r.payload(),
		})
		return err
	})
	if err != nil {
		return nil, asAPIError(err, "submit_response_failed")
	}
	return job, nil
}

// ScoreResponse asks the scorer for an assessment and records it.
func (u Usecases) ScoreResponse(ctx context.Context, r DrillResponse) (*types.DrillScore, error) {
	if u.deps.Scorer == nil {
		return nil, fmt.Errorf("no scorer configured")
	}
	schema, err := scoring.SchemaFor(r.DrillType)
	if err != nil {
		return nil, err
	}
	dims, err := u.deps.Dimensions.ListActive(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list dimensions: %w", err)
	}
	assessment, err := u.deps.Scorer.Score(ctx, ScoreRequest{
		DrillType:    r.DrillType,
		DrillPhase:   r.DrillPhase,
		Prompt:       r.Prompt,
		ResponseText: r.ResponseText,
		Schema:       schema,
		Dimensions:   dims,
	})
	if err != nil {
		observability.Current().IncScoring(r.DrillType, "scorer_error")
		return nil, fmt.Errorf("score response: %w", err)
	}
	return u.RecordScore(ctx, r, assessment)
}

// RecordScore validates an assessment and stores the drill score with its
// criterion rows and one blind spot observation per dimension. The exchange
// was counted when the response was submitted. With r.JobRunID set, a retry
// of the same job returns the score already stored.
func (u Usecases) RecordScore(ctx context.Context, r DrillResponse, a *scoring.Assessment) (*types.DrillScore, error) {
	if a == nil {
		return nil, apierr.New(http.StatusUnprocessableEntity, "invalid_assessment", fmt.Errorf("nil assessment"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	session, err := u.ownedSession(dbc, r.UserID, r.SessionID)
	if err != nil {
		return nil, err
	}
	if prior, err := u.priorScore(dbc, r.JobRunID); err != nil || prior != nil {
		return prior, err
	}

	outcomes, err := scoring.ValidateCriteria(r.DrillType, a.Criteria)
	if err != nil {
		observability.Current().IncScoring(r.DrillType, "invalid")
		var ve *scoring.ValidationError
		if errors.As(err, &ve) || errors.Is(err, scoring.ErrUnknownDrillType) {
			return nil, apierr.New(http.StatusUnprocessableEntity, "invalid_assessment", err)
		}
		return nil, err
	}
	spots, err := u.dimensionObservations(dbc, r.UserID, a.Dimensions)
	if err != nil {
		observability.Current().IncScoring(r.DrillType, "invalid")
		return nil, err
	}

	now := time.Now().UTC()
	score := &types.DrillScore{
		UserID:         r.UserID,
		SessionID:      session.ID,
		PracticeModeID: session.PracticeModeID,
		DrillType:      r.DrillType,
		DrillPhase:     r.DrillPhase,
		ResponseText:   r.ResponseText,
		WordCount:      len(strings.Fields(r.ResponseText)),
		ResponseTimeMS: r.ResponseTimeMS,
		IsIteration:    r.IsIteration,
		OverallScore:   a.OverallScore,
		CreatedAt:      now,
	}
	if r.JobRunID != uuid.Nil {
		jobRunID := r.JobRunID
		score.JobRunID = &jobRunID
	}
	criteria := make([]*types.DrillCriterionResult, 0, len(outcomes))
	for _, o := range outcomes {
		criteria = append(criteria, &types.DrillCriterionResult{
			CriterionKey: o.Key,
			DrillType:    r.DrillType,
			Passed:       o.Passed,
			Value:        o.Value,
		})
	}
	if err := u.deps.Scores.Create(dbc, score, criteria, spots); err != nil {
		// A concurrent run of the same job may have won the unique job_run_id.
		if prior, perr := u.priorScore(dbc, r.JobRunID); perr == nil && prior != nil {
			return prior, nil
		}
		return nil, fmt.Errorf("store drill score: %w", err)
	}
	observability.Current().IncScoring(r.DrillType, "recorded")
	u.deps.Log.Debug("Drill score recorded",
		"user_id", r.UserID,
		"session_id", r.SessionID,
		"drill_type", r.DrillType,
		"dimensions", len(spots),
	)
	return score, nil
}

func (u Usecases) priorScore(dbc dbctx.Context, jobRunID uuid.UUID) (*types.DrillScore, error) {
	if jobRunID == uuid.Nil {
		return nil, nil
	}
	prior, err := u.deps.Scores.GetByJobRunID(dbc, jobRunID)
	if err != nil {
		return nil, fmt.Errorf("load prior score: %w", err)
	}
	return prior, nil
}

func (u Usecases) dimensionObservations(dbc dbctx.Context, userID uuid.UUID, scores []scoring.DimensionScore) ([]*types.BlindSpot, error) {
	active, err := u.deps.Dimensions.ListActive(dbc)
	if err != nil {
		return nil, fmt.Errorf("list dimensions: %w", err)
	}
	known := make(map[string]bool, len(active))
	for _, d := range active {
		known[d.Key] = true
	}
	var problems []string
	seen := map[string]bool{}
	out := make([]*types.BlindSpot, 0, len(scores))
	for _, s := range scores {
		key := strings.TrimSpace(s.Key)
		switch {
		case !known[key]:
			problems = append(problems, fmt.Sprintf("unknown dimension %q", key))
		case seen[key]:
			problems = append(problems, fmt.Sprintf("duplicate dimension %q", key))
		case s.Score < 1 || s.Score > 10:
			problems = append(problems, fmt.Sprintf("dimension %q score %d outside 1-10", key, s.Score))
		default:
			seen[key] = true
			out = append(out, &types.BlindSpot{
				UserID:       userID,
				DimensionKey: key,
				Score:        s.Score,
				Suggestion:   strings.TrimSpace(s.Suggestion),
			})
		}
	}
	if len(problems) > 0 {
		return nil, apierr.New(http.StatusUnprocessableEntity, "invalid_assessment",
			fmt.Errorf("invalid dimensions: %s", strings.Join(problems, "; ")))
	}
	return out, nil
}
