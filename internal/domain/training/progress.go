package training

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MinLevel = 1
	MaxLevel = 5
)

// UserModeProgress is the single progress row per (user, practice mode).
type UserModeProgress struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                 uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_mode_progress_user_mode,priority:1" json:"user_id"`
	PracticeModeID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_mode_progress_user_mode,priority:2" json:"practice_mode_id"`
	CurrentLevel           int        `gorm:"not null;column:current_level" json:"current_level"`
	TotalSessions          int        `gorm:"not null;column:total_sessions" json:"total_sessions"`
	TotalDrillsCompleted   int        `gorm:"not null;column:total_drills_completed" json:"total_drills_completed"`
	SessionsAtCurrentLevel int        `gorm:"not null;column:sessions_at_current_level" json:"sessions_at_current_level"`
	TotalTimeSeconds       int64      `gorm:"not null;column:total_time_seconds" json:"total_time_seconds"`
	LastTrainedAt          *time.Time `gorm:"column:last_trained_at" json:"last_trained_at,omitempty"`
	LastSessionID          *uuid.UUID `gorm:"type:uuid;column:last_session_id" json:"last_session_id,omitempty"`
	CreatedAt              time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"not null" json:"updated_at"`
}

func (UserModeProgress) TableName() string { return "user_mode_progress" }

func (p *UserModeProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CurrentLevel < MinLevel {
		p.CurrentLevel = MinLevel
	}
	return nil
}

// DrillScoreSummary is one entry of a completion event's per-drill scores.
type DrillScoreSummary struct {
	DrillType string  `json:"drill_type"`
	Score     float64 `json:"score"`
}

// SessionCompletion is the append-only analytics record written once per
// completed session.
type SessionCompletion struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	PracticeModeID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"practice_mode_id"`
	DrillsCompleted int            `gorm:"not null;column:drills_completed" json:"drills_completed"`
	DurationSeconds int            `gorm:"not null;column:duration_seconds" json:"duration_seconds"`
	DrillScores     datatypes.JSON `gorm:"column:drill_scores" json:"drill_scores"`
	LevelBefore     int            `gorm:"not null;column:level_before" json:"level_before"`
	LevelAfter      int            `gorm:"not null;column:level_after" json:"level_after"`
	LeveledUp       bool           `gorm:"not null;column:leveled_up" json:"leveled_up"`
	CreatedAt       time.Time      `gorm:"not null;index" json:"created_at"`
}

func (SessionCompletion) TableName() string { return "session_completion" }

func (c *SessionCompletion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
