package training

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/apierr"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type PracticeModeRepo interface {
	Upsert(dbc dbctx.Context, modes []*types.PracticeMode) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PracticeMode, error)
	ListActive(dbc dbctx.Context) ([]*types.PracticeMode, error)
}

type practiceModeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPracticeModeRepo(db *gorm.DB, baseLog *logger.Logger) PracticeModeRepo {
	return &practiceModeRepo{db: db, log: baseLog.With("repo", "PracticeModeRepo")}
}

func (r *practiceModeRepo) Upsert(dbc dbctx.Context, modes []*types.PracticeMode) error {
	if len(modes) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "active", "updated_at"}),
	}).Create(&modes).Error
}

func (r *practiceModeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PracticeMode, error) {
	var m types.PracticeMode
	err := dbc.Conn(r.db).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("practice mode %s: %w", id, apierr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *practiceModeRepo) ListActive(dbc dbctx.Context) ([]*types.PracticeMode, error) {
	var out []*types.PracticeMode
	if err := dbc.Conn(r.db).Where("active = ?", true).Order("key ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
