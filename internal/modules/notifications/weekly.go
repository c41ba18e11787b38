package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	userrepo "github.com/yungbote/mentalgym-backend/internal/data/repos/user"
	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/observability"
	"github.com/yungbote/mentalgym-backend/internal/plans"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/mail"
)

type WeeklyRunSummary struct {
	RunID    string `json:"run_id"`
	Week     int    `json:"week"`
	Year     int    `json:"year"`
	Eligible int    `json:"eligible"`
	Sent     int    `json:"sent"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// RunWeekly sends the weekly blind spot report for the ISO week containing
// now. A failure for one user is reported and the batch moves on; only
// failing to list eligible users aborts the run.
func (u Usecases) RunWeekly(ctx context.Context, now time.Time) (*WeeklyRunSummary, error) {
	year, week := u.ISOWeek(now)
	summary := &WeeklyRunSummary{RunID: ulid.Make().String(), Week: week, Year: year}
	log := u.deps.Log
	if log != nil {
		log = log.With("run_id", summary.RunID, "week", week, "year", year)
		log.Info("Weekly report run started")
	}

	users, err := u.deps.Users.ListWeeklyReportEligible(dbctx.Context{Ctx: ctx}, userrepo.WeeklyEligibility{
		Plans:       u.deps.Plans.KeysWithFeature(plans.FeatureWeeklyReports),
		ActiveSince: now.Add(-u.deps.Config.ActiveWindow),
		Week:        week,
		Year:        year,
	})
	if err != nil {
		observability.Current().IncWeeklyRun("failed")
		return nil, fmt.Errorf("list eligible users: %w", err)
	}
	summary.Eligible = len(users)

	for _, usr := range users {
		if err := ctx.Err(); err != nil {
			observability.Current().IncWeeklyRun("canceled")
			return summary, err
		}
		sent, err := u.sendWeekly(ctx, usr, week, year, now)
		switch {
		case err != nil:
			summary.Failed++
			if u.deps.Reporter != nil {
				u.deps.Reporter.Report(ctx, "weekly_report", err, "user_id", usr.ID, "run_id", summary.RunID)
			}
		case sent:
			summary.Sent++
		default:
			summary.Skipped++
		}
	}

	observability.Current().IncWeeklyRun("completed")
	if log != nil {
		log.Info("Weekly report run finished",
			"eligible", summary.Eligible,
			"sent", summary.Sent,
			"skipped", summary.Skipped,
			"failed", summary.Failed,
		)
	}
	return summary, nil
}

func (u Usecases) sendWeekly(ctx context.Context, usr *types.User, week, year int, now time.Time) (bool, error) {
	// A previous or concurrent run may have sent since the list was built.
	exists, err := u.deps.Emails.ExistsForWeek(dbctx.Context{Ctx: ctx}, usr.ID, types.EmailTypeWeeklyReport, week, year)
	if err != nil {
		return false, fmt.Errorf("check weekly audit: %w", err)
	}
	if exists {
		u.skip(types.EmailTypeWeeklyReport, usr.ID, "already_sent")
		return false, nil
	}

	analysis, err := u.deps.Analyzer.Analyze(ctx, usr.ID)
	if err != nil {
		return false, fmt.Errorf("analyze: %w", err)
	}
	content, ok := BuildWeeklyContent(analysis)
	if !ok {
		u.skip(types.EmailTypeWeeklyReport, usr.ID, "nothing_to_report")
		return false, nil
	}

	msg := mail.Message{
		To:       usr.Email,
		ToName:   usr.FirstName,
		Template: mail.TemplateWeeklyReport,
		Subject:  content.Subject,
		Data:     content.templateData(usr.FirstName),
	}
	if err := u.deliver(ctx, usr, types.EmailTypeWeeklyReport, msg, analysis, now); err != nil {
		return false, err
	}
	return true, nil
}
