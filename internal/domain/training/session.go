package training

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusAbandoned = "abandoned"
)

type TrainingSession struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_training_session_user_status,priority:1" json:"user_id"`
	PracticeModeID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"practice_mode_id"`
	Status          string     `gorm:"not null;column:status;index:idx_training_session_user_status,priority:2" json:"status"`
	LevelAtStart    int        `gorm:"not null;column:level_at_start" json:"level_at_start"`
	ExchangeCount   int        `gorm:"not null;column:exchange_count" json:"exchange_count"`
	StartedAt       time.Time  `gorm:"not null;column:started_at;index" json:"started_at"`
	EndedAt         *time.Time `gorm:"column:ended_at;index" json:"ended_at,omitempty"`
	DurationSeconds int        `gorm:"not null;column:duration_seconds" json:"duration_seconds"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}

func (TrainingSession) TableName() string { return "training_session" }

func (s *TrainingSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *TrainingSession) IsActive() bool { return s != nil && s.Status == SessionStatusActive }
