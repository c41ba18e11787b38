package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/mentalgym-backend/internal/data/repos/jobs"
	"github.com/yungbote/mentalgym-backend/internal/data/repos/reports"
	"github.com/yungbote/mentalgym-backend/internal/data/repos/scoring"
	"github.com/yungbote/mentalgym-backend/internal/data/repos/training"
	"github.com/yungbote/mentalgym-backend/internal/data/repos/user"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type PracticeModeRepo = training.PracticeModeRepo
type TrainingSessionRepo = training.TrainingSessionRepo
type UserModeProgressRepo = training.UserModeProgressRepo
type SessionCompletionRepo = training.SessionCompletionRepo
type ExchangeUsageRepo = training.ExchangeUsageRepo

type SkillDimensionRepo = scoring.SkillDimensionRepo
type DrillScoreRepo = scoring.DrillScoreRepo
type ObservationRepo = scoring.ObservationRepo

type BlindSpotEmailRepo = reports.BlindSpotEmailRepo

type JobRunRepo = jobs.JobRunRepo

// Set is every repository bound to one *gorm.DB.
type Set struct {
	User              UserRepo
	PracticeMode      PracticeModeRepo
	TrainingSession   TrainingSessionRepo
	UserModeProgress  UserModeProgressRepo
	SessionCompletion SessionCompletionRepo
	ExchangeUsage     ExchangeUsageRepo
	SkillDimension    SkillDimensionRepo
	DrillScore        DrillScoreRepo
	Observation       ObservationRepo
	BlindSpotEmail    BlindSpotEmailRepo
	JobRun            JobRunRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		User:              user.NewUserRepo(db, log),
		PracticeMode:      training.NewPracticeModeRepo(db, log),
		TrainingSession:   training.NewTrainingSessionRepo(db, log),
		UserModeProgress:  training.NewUserModeProgressRepo(db, log),
		SessionCompletion: training.NewSessionCompletionRepo(db, log),
		ExchangeUsage:     training.NewExchangeUsageRepo(db, log),
		SkillDimension:    scoring.NewSkillDimensionRepo(db, log),
		DrillScore:        scoring.NewDrillScoreRepo(db, log),
		Observation:       scoring.NewObservationRepo(db, log),
		BlindSpotEmail:    reports.NewBlindSpotEmailRepo(db, log),
		JobRun:            jobs.NewJobRunRepo(db, log),
	}
}
