package insights

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentalgym-backend/internal/data/repos"
	"github.com/yungbote/mentalgym-backend/internal/domain/scoring"
	"github.com/yungbote/mentalgym-backend/internal/observability"
	"github.com/yungbote/mentalgym-backend/internal/plans"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type UsecasesDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Config Config
	Plans  *plans.Table

	Users        repos.UserRepo
	Sessions     repos.TrainingSessionRepo
	Scores       repos.DrillScoreRepo
	Dimensions   repos.SkillDimensionRepo
	Observations repos.ObservationRepo
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Plans == nil {
		deps.Plans = plans.Default()
	}
	if deps.Config.MinSessions == 0 && deps.Config.MinResponses == 0 {
		deps.Config = DefaultConfig()
	}
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	deps.Log = deps.Log.With("module", "insights")
	return Usecases{deps: deps}
}

func (u Usecases) Config() Config { return u.deps.Config }

// Analyze computes the full, ungated analysis for a user.
func (u Usecases) Analyze(ctx context.Context, userID uuid.UUID) (*BlindSpotAnalysis, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sessions, err := u.deps.Sessions.CountCompleted(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	return u.analyze(dbc, userID, sessions)
}

func (u Usecases) analyze(dbc dbctx.Context, userID uuid.UUID, sessions int64) (*BlindSpotAnalysis, error) {
	cfg := u.deps.Config
	responses, err := u.deps.Scores.CountByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}
	if !hasEnoughData(sessions, responses, cfg) {
		return insufficient(sessions, responses, cfg), nil
	}

	dims, err := u.deps.Dimensions.ListAll(dbc)
	if err != nil {
		return nil, fmt.Errorf("list dimensions: %w", err)
	}
	spots, err := u.deps.Observations.ListBlindSpots(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list blind spots: %w", err)
	}
	universal := scoring.UniversalCriteria()
	keys := make([]string, 0, len(universal))
	for _, uc := range universal {
		keys = append(keys, uc.Key)
	}
	criteria, err := u.deps.Observations.ListCriterionResults(dbc, userID, keys)
	if err != nil {
		return nil, fmt.Errorf("list criterion results: %w", err)
	}

	return Build(Observations{
		TotalSessions:  sessions,
		TotalResponses: responses,
		Dimensions:     dims,
		BlindSpots:     spots,
		Criteria:       criteria,
	}, cfg), nil
}

// GetPageData returns the gated analysis shown on the blind spots page.
// Gate states are values, not errors; only storage failures return an error.
func (u Usecases) GetPageData(ctx context.Context, userID uuid.UUID) (*GatedBlindSpotAnalysis, error) {
	cfg := u.deps.Config
	dbc := dbctx.Context{Ctx: ctx}

	sessions, err := u.deps.Sessions.CountCompleted(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	if sessions < int64(cfg.MinSessions) {
		observability.Current().IncAnalysis(GateInsufficientData)
		return locked(GateInsufficientData, sessions, cfg), nil
	}

	user, err := u.deps.Users.GetByID(dbc, userID)
	if err != nil {
		return nil, err
	}

	analysis, err := u.analyze(dbc, userID, sessions)
	if err != nil {
		return nil, err
	}

	gate := GateUnlocked
	switch {
	case !analysis.HasEnoughData:
		gate = GateInsufficientData
	case !u.deps.Plans.HasFeature(user.Plan, plans.FeatureBlindSpots):
		gate = GateRequiresUpgrade
	}

	u.deps.Log.Info("Blind spot analysis computed",
		"user_id", userID,
		"plan", u.deps.Plans.Get(user.Plan).Key,
		"gate", gate,
		"sessions", analysis.TotalSessions,
		"responses", analysis.TotalResponses,
		"blind_spots", len(analysis.BlindSpots),
		"patterns", len(analysis.UniversalPatterns),
	)
	observability.Current().IncAnalysis(gate)

	switch gate {
	case GateInsufficientData:
		return locked(GateInsufficientData, sessions, cfg), nil
	case GateRequiresUpgrade:
		out := locked(GateRequiresUpgrade, sessions, cfg)
		required := plans.UpgradePlan
		out.RequiredPlan = &required
		return out, nil
	}
	return unlocked(analysis, cfg), nil
}
