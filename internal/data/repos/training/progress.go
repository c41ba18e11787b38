package training

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/domain/training"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type UserModeProgressRepo interface {
	// Ensure creates the (user, mode) row at level 1 if it does not exist and
	// returns the current row.
	Ensure(dbc dbctx.Context, userID, modeID uuid.UUID) (*types.UserModeProgress, error)
	// Update locks the (user, mode) row, creating it first if needed, applies
	// mutate and saves the result, all inside one transaction.
	Update(dbc dbctx.Context, userID, modeID uuid.UUID, mutate func(p *types.UserModeProgress) error) (*types.UserModeProgress, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserModeProgress, error)
}

type userModeProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserModeProgressRepo(db *gorm.DB, baseLog *logger.Logger) UserModeProgressRepo {
	return &userModeProgressRepo{db: db, log: baseLog.With("repo", "UserModeProgressRepo")}
}

func insertIfAbsent(tx *gorm.DB, userID, modeID uuid.UUID) error {
	row := &types.UserModeProgress{
		UserID:         userID,
		PracticeModeID: modeID,
		CurrentLevel:   training.MinLevel,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "practice_mode_id"}},
		DoNothing: true,
	}).Create(row).Error
}

func (r *userModeProgressRepo) Ensure(dbc dbctx.Context, userID, modeID uuid.UUID) (*types.UserModeProgress, error) {
	conn := dbc.Conn(r.db)
	if err := insertIfAbsent(conn, userID, modeID); err != nil {
		return nil, fmt.Errorf("ensure progress: %w", err)
	}
	var p types.UserModeProgress
	if err := conn.Where("user_id = ? AND practice_mode_id = ?", userID, modeID).First(&p).Error; err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return &p, nil
}

func (r *userModeProgressRepo) Update(dbc dbctx.Context, userID, modeID uuid.UUID, mutate func(p *types.UserModeProgress) error) (*types.UserModeProgress, error) {
	var out types.UserModeProgress
	err := dbc.Conn(r.db).Transaction(func(txx *gorm.DB) error {
		if err := insertIfAbsent(txx, userID, modeID); err != nil {
			return fmt.Errorf("ensure progress: %w", err)
		}
		if err := txx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND practice_mode_id = ?", userID, modeID).
			First(&out).Error; err != nil {
			return fmt.Errorf("lock progress: %w", err)
		}
		if err := mutate(&out); err != nil {
			return err
		}
		out.UpdatedAt = time.Now().UTC()
		return txx.Model(&types.UserModeProgress{}).
			Where("id = ?", out.ID).
			Updates(map[string]any{
				"current_level":             out.CurrentLevel,
				"total_sessions":            out.TotalSessions,
				"total_drills_completed":    out.TotalDrillsCompleted,
				"sessions_at_current_level": out.SessionsAtCurrentLevel,
				"total_time_seconds":        out.TotalTimeSeconds,
				"last_trained_at":           out.LastTrainedAt,
				"last_session_id":           out.LastSessionID,
				"updated_at":                out.UpdatedAt,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userModeProgressRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserModeProgress, error) {
	var out []*types.UserModeProgress
	if err := dbc.Conn(r.db).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
