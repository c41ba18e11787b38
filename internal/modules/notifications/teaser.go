package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/observability"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/mail"
)

const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// SendTeaser mails the one-time blind spot teaser to a free user. Every
// guard that fails is a no-op: sent is false and err is nil.
func (u Usecases) SendTeaser(ctx context.Context, userID uuid.UUID, now time.Time) (sent bool, err error) {
	dbc := dbctx.Context{Ctx: ctx}
	usr, err := u.deps.Users.GetByID(dbc, userID)
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	reason, err := u.teaserSkipReason(dbc, usr)
	if err != nil {
		return false, err
	}
	if reason != "" {
		u.skip(types.EmailTypeTeaser, userID, reason)
		return false, nil
	}

	analysis, err := u.deps.Analyzer.Analyze(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("analyze: %w", err)
	}
	if !analysis.HasEnoughData || len(analysis.BlindSpots) == 0 {
		u.skip(types.EmailTypeTeaser, userID, "no_blind_spots")
		return false, nil
	}

	gap := analysis.BiggestGap
	if gap == nil {
		gap = &analysis.BlindSpots[0]
	}
	subject := fmt.Sprintf("We found %d blind spot%s in your training", len(analysis.BlindSpots), plural(len(analysis.BlindSpots)))
	msg := mail.Message{
		To:       usr.Email,
		ToName:   usr.FirstName,
		Template: mail.TemplateBlindSpotTeaser,
		Subject:  subject,
		Data: map[string]any{
			"first_name":        usr.FirstName,
			"blind_spot_count":  len(analysis.BlindSpots),
			"biggest_gap_label": gap.Label,
			"upgrade_url":       u.deps.Config.UpgradeURL,
		},
	}
	// The teaser only reveals the count and the biggest gap.
	snapshot := map[string]any{
		"blind_spot_count": len(analysis.BlindSpots),
		"biggest_gap":      gap.Key,
		"total_sessions":   analysis.TotalSessions,
	}
	if err := u.deliver(ctx, usr, types.EmailTypeTeaser, msg, snapshot, now); err != nil {
		return false, err
	}
	return true, nil
}

func (u Usecases) teaserSkipReason(dbc dbctx.Context, usr *types.User) (string, error) {
	if u.deps.Plans.IsPaid(usr.Plan) {
		return "paid_plan", nil
	}
	if usr.TeaserEmailsDisabled {
		return "disabled", nil
	}
	seen, err := u.deps.Emails.ExistsOfType(dbc, usr.ID, types.EmailTypeTeaser)
	if err != nil {
		return "", fmt.Errorf("check teaser history: %w", err)
	}
	if seen {
		return "already_sent", nil
	}
	return "", nil
}

// deliver sends msg and writes the audit row right away.
func (u Usecases) deliver(ctx context.Context, usr *types.User, emailType string, msg mail.Message, snapshot any, now time.Time) error {
	messageID, err := u.deps.Mail.Send(ctx, msg)
	if err != nil {
		observability.Current().IncEmail(emailType, OutcomeFailed)
		return fmt.Errorf("send %s: %w", emailType, err)
	}
	observability.Current().IncEmail(emailType, OutcomeSent)

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	year, week := u.ISOWeek(now)
	row := &types.BlindSpotEmail{
		UserID:            usr.ID,
		EmailType:         emailType,
		Year:              year,
		WeekNumber:        week,
		Subject:           msg.Subject,
		ProviderMessageID: messageID,
		AnalysisSnapshot:  datatypes.JSON(raw),
		SentAt:            now.UTC(),
	}
	if err := u.deps.Emails.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		return fmt.Errorf("record %s: %w", emailType, err)
	}
	if u.deps.Log != nil {
		u.deps.Log.Info("Email sent", "email_type", emailType, "user_id", usr.ID, "week", week, "year", year)
	}
	return nil
}

func (u Usecases) skip(emailType string, userID uuid.UUID, reason string) {
	observability.Current().IncEmail(emailType, OutcomeSkipped)
	if u.deps.Log != nil {
		u.deps.Log.Debug("Email skipped", "email_type", emailType, "user_id", userID, "reason", reason)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
