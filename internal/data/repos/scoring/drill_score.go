package scoring

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type DrillScoreRepo interface {
	// Create writes a score together with its criterion rows and dimension
	// observations. Callers wanting atomicity pass a transaction.
	Create(dbc dbctx.Context, score *types.DrillScore, criteria []*types.DrillCriterionResult, spots []*types.BlindSpot) error
	// GetByJobRunID returns the score written by a scoring job, or nil.
	GetByJobRunID(dbc dbctx.Context, jobRunID uuid.UUID) (*types.DrillScore, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.DrillScore, error)
}

type drillScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDrillScoreRepo(db *gorm.DB, baseLog *logger.Logger) DrillScoreRepo {
	return &drillScoreRepo{db: db, log: baseLog.With("repo", "DrillScoreRepo")}
}

func (r *drillScoreRepo) Create(dbc dbctx.Context, score *types.DrillScore, criteria []*types.DrillCriterionResult, spots []*types.BlindSpot) error {
	return dbc.Conn(r.db).Transaction(func(txx *gorm.DB) error {
		if err := txx.Create(score).Error; err != nil {
			return err
		}
		for _, c := range criteria {
			c.DrillScoreID = score.ID
			c.UserID = score.UserID
			c.DrillType = score.DrillType
			c.CreatedAt = score.CreatedAt
		}
		for _, s := range spots {
			s.DrillScoreID = score.ID
			s.UserID = score.UserID
			s.CreatedAt = score.CreatedAt
		}
		if len(criteria) > 0 {
			if err := txx.Create(&criteria).Error; err != nil {
				return err
			}
		}
		if len(spots) > 0 {
			if err := txx.Create(&spots).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *drillScoreRepo) GetByJobRunID(dbc dbctx.Context, jobRunID uuid.UUID) (*types.DrillScore, error) {
	var out []*types.DrillScore
	if err := dbc.Conn(r.db).Where("job_run_id = ?", jobRunID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *drillScoreRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).Model(&types.DrillScore{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *drillScoreRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.DrillScore, error) {
	var out []*types.DrillScore
	if err := dbc.Conn(r.db).Where("session_id = ?", sessionID).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
