package training

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PracticeMode is a training track (e.g. "interview", "negotiation").
// Progress is tracked per user per mode.
type PracticeMode struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;not null;column:key" json:"key"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	Active    bool      `gorm:"not null;column:active" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PracticeMode) TableName() string { return "practice_mode" }

func (m *PracticeMode) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
