package scoring

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

// ObservationRepo reads the per-user history the analyzer aggregates.
type ObservationRepo interface {
	// ListBlindSpots returns every dimension observation, oldest first.
	ListBlindSpots(dbc dbctx.Context, userID uuid.UUID) ([]*types.BlindSpot, error)
	// ListCriterionResults returns outcomes for the given criterion keys, oldest first.
	ListCriterionResults(dbc dbctx.Context, userID uuid.UUID, keys []string) ([]*types.DrillCriterionResult, error)
}

type observationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewObservationRepo(db *gorm.DB, baseLog *logger.Logger) ObservationRepo {
	return &observationRepo{db: db, log: baseLog.With("repo", "ObservationRepo")}
}

func (r *observationRepo) ListBlindSpots(dbc dbctx.Context, userID uuid.UUID) ([]*types.BlindSpot, error) {
	var out []*types.BlindSpot
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *observationRepo) ListCriterionResults(dbc dbctx.Context, userID uuid.UUID, keys []string) ([]*types.DrillCriterionResult, error) {
	var out []*types.DrillCriterionResult
	if len(keys) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("user_id = ? AND criterion_key IN ?", userID, keys).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
