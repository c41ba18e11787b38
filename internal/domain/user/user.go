package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	FirstName string    `gorm:"not null;column:first_name" json:"first_name"`
	// Plan is a key into the plan table (free, pro, unlimited).
	Plan     string `gorm:"not null;column:plan;index" json:"plan"`
	Timezone string `gorm:"column:timezone" json:"timezone,omitempty"`

	TeaserEmailsDisabled  bool `gorm:"not null;column:teaser_emails_disabled" json:"teaser_emails_disabled"`
	WeeklyReportsDisabled bool `gorm:"not null;column:weekly_reports_disabled" json:"weekly_reports_disabled"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user_account" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
