package training

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExchangeUsage counts the exchanges a user reserved on one calendar day.
// Day is YYYY-MM-DD in the training day's timezone.
type ExchangeUsage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_exchange_usage_user_day,priority:1" json:"user_id"`
	Day       string    `gorm:"not null;column:day;uniqueIndex:idx_exchange_usage_user_day,priority:2" json:"day"`
	Exchanges int       `gorm:"not null;column:exchanges" json:"exchanges"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ExchangeUsage) TableName() string { return "exchange_usage" }

func (u *ExchangeUsage) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DayKey formats t as an ExchangeUsage day in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}
