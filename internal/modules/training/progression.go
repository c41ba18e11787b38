package training

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/domain/training"
)

type Completion struct {
	SessionID       uuid.UUID
	DrillsCompleted int
	DurationSeconds int
	At              time.Time
}

// ApplyCompletion folds one completed session into p and reports whether
// the user leveled up. Level never passes training.MaxLevel, whatever the
// counter says; plan level limits are enforced when a session starts.
func ApplyCompletion(p *types.UserModeProgress, c Completion, cfg Config) bool {
	if p.CurrentLevel < training.MinLevel {
		p.CurrentLevel = training.MinLevel
	}
	p.TotalSessions++
	if c.DrillsCompleted > 0 {
		p.TotalDrillsCompleted += c.DrillsCompleted
	}
	p.SessionsAtCurrentLevel++
	if c.DurationSeconds > 0 {
		p.TotalTimeSeconds += int64(c.DurationSeconds)
	}
	at := c.At.UTC()
	p.LastTrainedAt = &at
	sessionID := c.SessionID
	p.LastSessionID = &sessionID

	threshold := cfg.LevelUpSessions
	if threshold < 1 {
		threshold = 1
	}
	if p.SessionsAtCurrentLevel >= threshold && p.CurrentLevel < training.MaxLevel {
		p.CurrentLevel++
		p.SessionsAtCurrentLevel = 0
		return true
	}
	return false
}
