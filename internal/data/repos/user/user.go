package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/apierr"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

// WeeklyEligibility selects users owed a weekly report for (Week, Year).
type WeeklyEligibility struct {
	Plans       []string
	ActiveSince time.Time
	Week        int
	Year        int
}

type EmailPreferences struct {
	TeaserEmailsDisabled  *bool
	WeeklyReportsDisabled *bool
}

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error)
	// LockByID loads the user with a row lock held until dbc's transaction
	// ends. The lock does not block inserts referencing the user.
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	UpdatePlan(dbc dbctx.Context, id uuid.UUID, plan string) error
	UpdateEmailPreferences(dbc dbctx.Context, id uuid.UUID, prefs EmailPreferences) error
	ListWeeklyReportEligible(dbc dbctx.Context, q WeeklyEligibility) ([]*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

// NormalizePlan is the stored form of a plan key.
func NormalizePlan(plan string) string {
	return strings.ToLower(strings.TrimSpace(plan))
}

func (r *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	for _, u := range users {
		u.Plan = NormalizePlan(u.Plan)
	}
	if err := dbc.Conn(r.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	var u types.User
	err := dbc.Conn(r.db).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, apierr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	var u types.User
	err := dbc.Conn(r.db).
		Clauses(clause.Locking{Strength: "NO KEY UPDATE"}).
		Where("id = ?", id).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, apierr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) UpdatePlan(dbc dbctx.Context, id uuid.UUID, plan string) error {
	res := dbc.Conn(r.db).Model(&types.User{}).Where("id = ?", id).Update("plan", NormalizePlan(plan))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, apierr.ErrNotFound)
	}
	return nil
}

func (r *userRepo) UpdateEmailPreferences(dbc dbctx.Context, id uuid.UUID, prefs EmailPreferences) error {
	updates := map[string]any{}
	if prefs.TeaserEmailsDisabled != nil {
		updates["teaser_emails_disabled"] = *prefs.TeaserEmailsDisabled
	}
	if prefs.WeeklyReportsDisabled != nil {
		updates["weekly_reports_disabled"] = *prefs.WeeklyReportsDisabled
	}
	if len(updates) == 0 {
		return nil
	}
	res := dbc.Conn(r.db).Model(&types.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, apierr.ErrNotFound)
	}
	return nil
}

// ListWeeklyReportEligible returns users on one of q.Plans with reports
// enabled, at least one session completed since q.ActiveSince and no weekly
// report recorded for (q.Week, q.Year). Ordered by id.
func (r *userRepo) ListWeeklyReportEligible(dbc dbctx.Context, q WeeklyEligibility) ([]*types.User, error) {
	var out []*types.User
	if len(q.Plans) == 0 {
		return out, nil
	}
	plans := make([]string, 0, len(q.Plans))
	for _, p := range q.Plans {
		plans = append(plans, NormalizePlan(p))
	}
	// Rows written before plan keys were normalized may still carry case.
	err := dbc.Conn(r.db).
		Where("LOWER(TRIM(plan)) IN ?", plans).
		Where("weekly_reports_disabled = ?", false).
		Where(`EXISTS (
			SELECT 1 FROM training_session s
			WHERE s.user_id = user_account.id AND s.status = ? AND s.ended_at >= ?
		)`, types.SessionStatusCompleted, q.ActiveSince).
		Where(`NOT EXISTS (
			SELECT 1 FROM blind_spot_email e
			WHERE e.user_id = user_account.id AND e.email_type = ? AND e.week_number = ? AND e.year = ?
		)`, types.EmailTypeWeeklyReport, q.Week, q.Year).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
