package reports

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EmailTypeTeaser       = "teaser"
	EmailTypeWeeklyReport = "weekly_report"
)

// BlindSpotEmail is the audit row written right after a successful send.
// (user, type, week, year) is unique by construction of the eligibility query.
type BlindSpotEmail struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;index:idx_blind_spot_email_lookup,priority:1" json:"user_id"`
	EmailType         string         `gorm:"not null;column:email_type;index:idx_blind_spot_email_lookup,priority:2" json:"email_type"`
	Year              int            `gorm:"not null;column:year;index:idx_blind_spot_email_lookup,priority:3" json:"year"`
	WeekNumber        int            `gorm:"not null;column:week_number;index:idx_blind_spot_email_lookup,priority:4" json:"week_number"`
	Subject           string         `gorm:"column:subject" json:"subject"`
	ProviderMessageID string         `gorm:"column:provider_message_id" json:"provider_message_id,omitempty"`
	AnalysisSnapshot  datatypes.JSON `gorm:"column:analysis_snapshot" json:"analysis_snapshot"`
	SentAt            time.Time      `gorm:"not null;column:sent_at" json:"sent_at"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
}

func (BlindSpotEmail) TableName() string { return "blind_spot_email" }

func (e *BlindSpotEmail) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
