package domain

import (
	"github.com/yungbote/mentalgym-backend/internal/domain/jobs"
	"github.com/yungbote/mentalgym-backend/internal/domain/reports"
	"github.com/yungbote/mentalgym-backend/internal/domain/scoring"
	"github.com/yungbote/mentalgym-backend/internal/domain/training"
	"github.com/yungbote/mentalgym-backend/internal/domain/user"
)

const (
	SessionStatusActive    = training.SessionStatusActive
	SessionStatusCompleted = training.SessionStatusCompleted
	SessionStatusAbandoned = training.SessionStatusAbandoned

	EmailTypeTeaser       = reports.EmailTypeTeaser
	EmailTypeWeeklyReport = reports.EmailTypeWeeklyReport

	JobStatusQueued    = jobs.StatusQueued
	JobStatusRunning   = jobs.StatusRunning
	JobStatusSucceeded = jobs.StatusSucceeded
	JobStatusFailed    = jobs.StatusFailed

	JobTypeDrillScore  = jobs.TypeDrillScore
	JobTypeTeaserEmail = jobs.TypeTeaserEmail
)

type (
	User = user.User

	PracticeMode      = training.PracticeMode
	TrainingSession   = training.TrainingSession
	UserModeProgress  = training.UserModeProgress
	SessionCompletion = training.SessionCompletion
	DrillScoreSummary = training.DrillScoreSummary
	ExchangeUsage     = training.ExchangeUsage

	SkillDimension       = scoring.SkillDimension
	DrillScore           = scoring.DrillScore
	DrillCriterionResult = scoring.DrillCriterionResult
	BlindSpot            = scoring.BlindSpot

	BlindSpotEmail = reports.BlindSpotEmail

	JobRun = jobs.JobRun
)

// Models lists every persisted model, in migration order.
func Models() []any {
	return []any{
		&User{},
		&PracticeMode{},
		&TrainingSession{},
		&UserModeProgress{},
		&SessionCompletion{},
		&ExchangeUsage{},
		&SkillDimension{},
		&DrillScore{},
		&DrillCriterionResult{},
		&BlindSpot{},
		&BlindSpotEmail{},
		&JobRun{},
	}
}
