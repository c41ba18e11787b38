package training

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type SessionCompletionRepo interface {
	Create(dbc dbctx.Context, c *types.SessionCompletion) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.SessionCompletion, error)
}

type sessionCompletionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionCompletionRepo(db *gorm.DB, baseLog *logger.Logger) SessionCompletionRepo {
	return &sessionCompletionRepo{db: db, log: baseLog.With("repo", "SessionCompletionRepo")}
}

func (r *sessionCompletionRepo) Create(dbc dbctx.Context, c *types.SessionCompletion) error {
	return dbc.Conn(r.db).Create(c).Error
}

func (r *sessionCompletionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.SessionCompletion, error) {
	var out []*types.SessionCompletion
	q := dbc.Conn(r.db).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
