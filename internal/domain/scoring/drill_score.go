package scoring

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DrillScore is one AI-scored user response. Immutable once written.
type DrillScore struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	PracticeModeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"practice_mode_id"`
	JobRunID       *uuid.UUID `gorm:"type:uuid;column:job_run_id;uniqueIndex" json:"job_run_id,omitempty"`
	DrillType      string     `gorm:"not null;column:drill_type;index" json:"drill_type"`
	DrillPhase     string     `gorm:"column:drill_phase" json:"drill_phase"`
	ResponseText   string     `gorm:"column:response_text" json:"response_text"`
	WordCount      int        `gorm:"not null;column:word_count" json:"word_count"`
	ResponseTimeMS int64      `gorm:"not null;column:response_time_ms" json:"response_time_ms"`
	IsIteration    bool       `gorm:"not null;column:is_iteration" json:"is_iteration"`
	OverallScore   float64    `gorm:"not null;column:overall_score" json:"overall_score"`
	CreatedAt      time.Time  `gorm:"not null;index" json:"created_at"`
}

func (DrillScore) TableName() string { return "drill_score" }

func (s *DrillScore) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// DrillCriterionResult is one validated criterion outcome of a DrillScore.
// Value is set for scale criteria only.
type DrillCriterionResult struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DrillScoreID uuid.UUID `gorm:"type:uuid;not null;index" json:"drill_score_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_criterion_user_key,priority:1" json:"user_id"`
	CriterionKey string    `gorm:"not null;column:criterion_key;index:idx_criterion_user_key,priority:2" json:"criterion_key"`
	DrillType    string    `gorm:"not null;column:drill_type" json:"drill_type"`
	Passed       bool      `gorm:"not null;column:passed" json:"passed"`
	Value        *float64  `gorm:"column:value" json:"value,omitempty"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
}

func (DrillCriterionResult) TableName() string { return "drill_criterion_result" }

func (r *DrillCriterionResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
