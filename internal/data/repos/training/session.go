package training

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/apierr"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type TrainingSessionRepo interface {
	Create(dbc dbctx.Context, s *types.TrainingSession) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TrainingSession, error)
	// Transition moves a session out of status from. It reports false when the
	// session was not in that status.
	Transition(dbc dbctx.Context, id uuid.UUID, from string, updates map[string]any) (bool, error)
	IncrementExchangeCount(dbc dbctx.Context, id uuid.UUID) (bool, error)
	CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type trainingSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainingSessionRepo(db *gorm.DB, baseLog *logger.Logger) TrainingSessionRepo {
	return &trainingSessionRepo{db: db, log: baseLog.With("repo", "TrainingSessionRepo")}
}

func (r *trainingSessionRepo) Create(dbc dbctx.Context, s *types.TrainingSession) error {
	return dbc.Conn(r.db).Create(s).Error
}

func (r *trainingSessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TrainingSession, error) {
	var s types.TrainingSession
	err := dbc.Conn(r.db).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("training session %s: %w", id, apierr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *trainingSessionRepo) Transition(dbc dbctx.Context, id uuid.UUID, from string, updates map[string]any) (bool, error) {
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := dbc.Conn(r.db).
		Model(&types.TrainingSession{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *trainingSessionRepo) IncrementExchangeCount(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.Conn(r.db).
		Model(&types.TrainingSession{}).
		Where("id = ? AND status = ?", id, types.SessionStatusActive).
		Updates(map[string]any{
			"exchange_count": gorm.Expr("exchange_count + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *trainingSessionRepo) CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).
		Model(&types.TrainingSession{}).
		Where("user_id = ? AND status = ?", userID, types.SessionStatusCompleted).
		Count(&n).Error
	return n, err
}
