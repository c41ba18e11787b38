package training

import (
	"gorm.io/gorm"

	"github.com/yungbote/mentalgym-backend/internal/data/repos"
	"github.com/yungbote/mentalgym-backend/internal/plans"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
	"github.com/yungbote/mentalgym-backend/internal/services"
)

type UsecasesDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Config Config
	Plans  *plans.Table
	Jobs   services.JobService
	Scorer Scorer

	Users       repos.UserRepo
	Modes       repos.PracticeModeRepo
	Sessions    repos.TrainingSessionRepo
	Progress    repos.UserModeProgressRepo
	Completions repos.SessionCompletionRepo
	Usage       repos.ExchangeUsageRepo
	Dimensions  repos.SkillDimensionRepo
	Scores      repos.DrillScoreRepo
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Plans == nil {
		deps.Plans = plans.Default()
	}
	if deps.Config.LevelUpSessions == 0 {
		deps.Config = DefaultConfig()
	}
	if deps.Config.DayLocation == nil {
		deps.Config.DayLocation = DefaultConfig().DayLocation
	}
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	deps.Log = deps.Log.With("module", "training")
	return Usecases{deps: deps}
}
