package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentalgym-backend/internal/data/repos"
	"github.com/yungbote/mentalgym-backend/internal/modules/insights"
	"github.com/yungbote/mentalgym-backend/internal/observability"
	"github.com/yungbote/mentalgym-backend/internal/plans"
	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
	"github.com/yungbote/mentalgym-backend/internal/platform/mail"
)

// Analyzer produces the ungated analysis for a user.
type Analyzer interface {
	Analyze(ctx context.Context, userID uuid.UUID) (*insights.BlindSpotAnalysis, error)
}

type Config struct {
	// Location defines the weekly report week and its Sunday 18:00 send time.
	Location   *time.Location
	UpgradeURL string
	// ActiveWindow is how recently a user must have trained to get a report.
	ActiveWindow time.Duration
}

const ReportTimezone = "America/New_York"

func DefaultConfig() Config {
	loc, err := time.LoadLocation(ReportTimezone)
	if err != nil {
		loc = time.UTC
	}
	return Config{
		Location:     loc,
		UpgradeURL:   "https://mentalgym.app/upgrade",
		ActiveWindow: 7 * 24 * time.Hour,
	}
}

func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.UpgradeURL = envutil.String("UPGRADE_URL", cfg.UpgradeURL)
	return cfg
}

type UsecasesDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Config   Config
	Plans    *plans.Table
	Mail     mail.Sender
	Analyzer Analyzer
	Reporter observability.ErrorReporter

	Users  repos.UserRepo
	Emails repos.BlindSpotEmailRepo
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Plans == nil {
		deps.Plans = plans.Default()
	}
	def := DefaultConfig()
	if deps.Config.Location == nil {
		deps.Config.Location = def.Location
	}
	if deps.Config.UpgradeURL == "" {
		deps.Config.UpgradeURL = def.UpgradeURL
	}
	if deps.Config.ActiveWindow <= 0 {
		deps.Config.ActiveWindow = 7 * 24 * time.Hour
	}
	if deps.Log != nil {
		deps.Log = deps.Log.With("module", "notifications")
		if deps.Reporter == nil {
			deps.Reporter = observability.NewErrorReporter(deps.Log)
		}
	}
	return Usecases{deps: deps}
}

// ISOWeek returns the ISO (year, week) of t in the report timezone.
func (u Usecases) ISOWeek(t time.Time) (year, week int) {
	return t.In(u.deps.Config.Location).ISOWeek()
}
