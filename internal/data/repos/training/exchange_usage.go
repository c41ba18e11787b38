package training

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type ExchangeUsageRepo interface {
	// Reserve adds one exchange to (user, day) when the count is below limit.
	// A limit of zero or less never rejects. The check and the increment are a
	// single UPDATE, so concurrent reservations cannot overshoot.
	Reserve(dbc dbctx.Context, userID uuid.UUID, day string, limit int) (bool, error)
	Count(dbc dbctx.Context, userID uuid.UUID, day string) (int, error)
}

type exchangeUsageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExchangeUsageRepo(db *gorm.DB, baseLog *logger.Logger) ExchangeUsageRepo {
	return &exchangeUsageRepo{db: db, log: baseLog.With("repo", "ExchangeUsageRepo")}
}

func (r *exchangeUsageRepo) Reserve(dbc dbctx.Context, userID uuid.UUID, day string, limit int) (bool, error) {
	conn := dbc.Conn(r.db)
	now := time.Now().UTC()
	row := &types.ExchangeUsage{UserID: userID, Day: day, CreatedAt: now, UpdatedAt: now}
	if err := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoNothing: true,
	}).Create(row).Error; err != nil {
		return false, fmt.Errorf("ensure exchange usage: %w", err)
	}

	q := conn.Model(&types.ExchangeUsage{}).Where("user_id = ? AND day = ?", userID, day)
	if limit > 0 {
		q = q.Where("exchanges < ?", limit)
	}
	res := q.Updates(map[string]any{
		"exchanges":  gorm.Expr("exchanges + 1"),
		"updated_at": now,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *exchangeUsageRepo) Count(dbc dbctx.Context, userID uuid.UUID, day string) (int, error) {
	var n int
	err := dbc.Conn(r.db).
		Model(&types.ExchangeUsage{}).
		Select("COALESCE(MAX(exchanges), 0)").
		Where("user_id = ? AND day = ?", userID, day).
		Scan(&n).Error
	return n, err
}
