package reports

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type BlindSpotEmailRepo interface {
	Create(dbc dbctx.Context, e *types.BlindSpotEmail) error
	ExistsForWeek(dbc dbctx.Context, userID uuid.UUID, emailType string, week, year int) (bool, error)
	ExistsOfType(dbc dbctx.Context, userID uuid.UUID, emailType string) (bool, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.BlindSpotEmail, error)
}

type blindSpotEmailRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlindSpotEmailRepo(db *gorm.DB, baseLog *logger.Logger) BlindSpotEmailRepo {
	return &blindSpotEmailRepo{db: db, log: baseLog.With("repo", "BlindSpotEmailRepo")}
}

func (r *blindSpotEmailRepo) Create(dbc dbctx.Context, e *types.BlindSpotEmail) error {
	return dbc.Conn(r.db).Create(e).Error
}

func (r *blindSpotEmailRepo) ExistsForWeek(dbc dbctx.Context, userID uuid.UUID, emailType string, week, year int) (bool, error) {
	var n int64
	err := dbc.Conn(r.db).
		Model(&types.BlindSpotEmail{}).
		Where("user_id = ? AND email_type = ? AND week_number = ? AND year = ?", userID, emailType, week, year).
		Count(&n).Error
	return n > 0, err
}

func (r *blindSpotEmailRepo) ExistsOfType(dbc dbctx.Context, userID uuid.UUID, emailType string) (bool, error) {
	var n int64
	err := dbc.Conn(r.db).
		Model(&types.BlindSpotEmail{}).
		Where("user_id = ? AND email_type = ?", userID, emailType).
		Count(&n).Error
	return n > 0, err
}

func (r *blindSpotEmailRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.BlindSpotEmail, error) {
	var out []*types.BlindSpotEmail
	if err := dbc.Conn(r.db).Where("user_id = ?", userID).Order("sent_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
