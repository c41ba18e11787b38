package scoring

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryCommunication          = "communication"
	CategoryReasoning              = "reasoning"
	CategoryResilience             = "resilience"
	CategoryInfluence              = "influence"
	CategorySelfAwareness          = "self_awareness"
	CategoryManipulationResistance = "manipulation_resistance"
)

var Categories = []string{
	CategoryCommunication,
	CategoryReasoning,
	CategoryResilience,
	CategoryInfluence,
	CategorySelfAwareness,
	CategoryManipulationResistance,
}

func IsCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// SkillDimension is a named evaluation axis. Anchors describe what a low,
// mid, high and exemplary score looks like.
type SkillDimension struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Key             string    `gorm:"uniqueIndex;not null;column:key" json:"key" yaml:"key"`
	Label           string    `gorm:"not null;column:label" json:"label" yaml:"label"`
	Category        string    `gorm:"not null;column:category;index" json:"category" yaml:"category"`
	AnchorLow       string    `gorm:"column:anchor_low" json:"anchor_low" yaml:"anchor_low"`
	AnchorMid       string    `gorm:"column:anchor_mid" json:"anchor_mid" yaml:"anchor_mid"`
	AnchorHigh      string    `gorm:"column:anchor_high" json:"anchor_high" yaml:"anchor_high"`
	AnchorExemplary string    `gorm:"column:anchor_exemplary" json:"anchor_exemplary" yaml:"anchor_exemplary"`
	Active          bool      `gorm:"not null;column:active" json:"active" yaml:"active"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at" yaml:"-"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at" yaml:"-"`
}

func (SkillDimension) TableName() string { return "skill_dimension" }

func (d *SkillDimension) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// AnchorFor returns the anchor describing the band a score falls in.
func (d *SkillDimension) AnchorFor(score float64) string {
	switch {
	case score <= 4:
		return d.AnchorLow
	case score <= 6:
		return d.AnchorMid
	case score <= 8:
		return d.AnchorHigh
	default:
		return d.AnchorExemplary
	}
}
