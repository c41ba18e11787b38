package scoring

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type SkillDimensionRepo interface {
	// Upsert inserts dimensions or refreshes them by key.
	Upsert(dbc dbctx.Context, dims []*types.SkillDimension) error
	ListAll(dbc dbctx.Context) ([]*types.SkillDimension, error)
	ListActive(dbc dbctx.Context) ([]*types.SkillDimension, error)
}

type skillDimensionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillDimensionRepo(db *gorm.DB, baseLog *logger.Logger) SkillDimensionRepo {
	return &skillDimensionRepo{db: db, log: baseLog.With("repo", "SkillDimensionRepo")}
}

func (r *skillDimensionRepo) Upsert(dbc dbctx.Context, dims []*types.SkillDimension) error {
	if len(dims) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"label", "category", "anchor_low", "anchor_mid", "anchor_high", "anchor_exemplary", "active", "updated_at",
		}),
	}).Create(&dims).Error
}

func (r *skillDimensionRepo) ListAll(dbc dbctx.Context) ([]*types.SkillDimension, error) {
	var out []*types.SkillDimension
	if err := dbc.Conn(r.db).Order("key ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *skillDimensionRepo) ListActive(dbc dbctx.Context) ([]*types.SkillDimension, error) {
	var out []*types.SkillDimension
	if err := dbc.Conn(r.db).Where("active = ?", true).Order("key ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
