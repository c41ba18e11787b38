package notifications

import (
	"context"

	"github.com/google/uuid"

	userrepo "github.com/yungbote/mentalgym-backend/internal/data/repos/user"
	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/apierr"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
)

// EmailPreferences is a partial update; nil fields are left alone.
type EmailPreferences struct {
	TeaserEmailsDisabled  *bool `json:"teaser_emails_disabled"`
	WeeklyReportsDisabled *bool `json:"weekly_reports_disabled"`
}

func (u Usecases) UpdateEmailPreferences(ctx context.Context, userID uuid.UUID, prefs EmailPreferences) (*types.User, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if err := u.deps.Users.UpdateEmailPreferences(dbc, userID, userrepo.EmailPreferences{
		TeaserEmailsDisabled:  prefs.TeaserEmailsDisabled,
		WeeklyReportsDisabled: prefs.WeeklyReportsDisabled,
	}); err != nil {
		return nil, apierr.From(err, "update_preferences_failed")
	}
	usr, err := u.deps.Users.GetByID(dbc, userID)
	if err != nil {
		return nil, apierr.From(err, "update_preferences_failed")
	}
	return usr, nil
}
