package scoring

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlindSpotThreshold is the highest score that still counts as a blind-spot signal.
const BlindSpotThreshold = 4.0

// BlindSpot is one dimension observation emitted when a drill response is
// scored. Rows are never updated.
type BlindSpot struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_blind_spot_user_dimension,priority:1" json:"user_id"`
	DrillScoreID uuid.UUID `gorm:"type:uuid;not null;index" json:"drill_score_id"`
	DimensionKey string    `gorm:"not null;column:dimension_key;index:idx_blind_spot_user_dimension,priority:2" json:"dimension_key"`
	Score        int       `gorm:"not null;column:score" json:"score"`
	Suggestion   string    `gorm:"column:suggestion" json:"suggestion,omitempty"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
}

func (BlindSpot) TableName() string { return "blind_spot" }

func (b *BlindSpot) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b *BlindSpot) IsSignal() bool { return float64(b.Score) <= BlindSpotThreshold }
