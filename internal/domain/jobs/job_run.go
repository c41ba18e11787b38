package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

const (
	TypeDrillScore  = "drill_score"
	TypeTeaserEmail = "teaser_email"
)

// JobRun is one unit of background work. Retry policy travels with the row:
// a failed run is claimable again once NextAttemptAt passes, until Attempts
// reaches MaxAttempts.
type JobRun struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUserID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	JobType       string         `gorm:"column:job_type;not null;index" json:"job_type"`
	EntityType    string         `gorm:"column:entity_type;index" json:"entity_type,omitempty"`
	EntityID      *uuid.UUID     `gorm:"type:uuid;column:entity_id;index" json:"entity_id,omitempty"`
	Status        string         `gorm:"column:status;not null;index" json:"status"`
	Stage         string         `gorm:"column:stage;not null" json:"stage"`
	Attempts      int            `gorm:"column:attempts;not null" json:"attempts"`
	MaxAttempts   int            `gorm:"column:max_attempts;not null" json:"max_attempts"`
	NextAttemptAt *time.Time     `gorm:"column:next_attempt_at;index" json:"next_attempt_at,omitempty"`
	Error         string         `gorm:"column:error" json:"error,omitempty"`
	LockedAt      *time.Time     `gorm:"column:locked_at;index" json:"locked_at,omitempty"`
	HeartbeatAt   *time.Time     `gorm:"column:heartbeat_at;index" json:"heartbeat_at,omitempty"`
	LastErrorAt   *time.Time     `gorm:"column:last_error_at" json:"last_error_at,omitempty"`
	Payload       datatypes.JSON `gorm:"column:payload" json:"payload"`
	Result        datatypes.JSON `gorm:"column:result" json:"result"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (JobRun) TableName() string { return "job_run" }

func (j *JobRun) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
