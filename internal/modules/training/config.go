package training

import (
	"time"

	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
)

type Config struct {
	// LevelUpSessions completions at a level before moving up.
	LevelUpSessions int
	// TeaserAtSessions is the completed-session count that triggers the teaser.
	TeaserAtSessions int
	// DayLocation bounds "today" for the daily exchange limit.
	DayLocation *time.Location
}

func DefaultConfig() Config {
	return Config{
		LevelUpSessions:  3,
		TeaserAtSessions: 5,
		DayLocation:      time.UTC,
	}
}

func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.LevelUpSessions = envutil.Int("TRAINING_LEVEL_UP_SESSIONS", cfg.LevelUpSessions)
	if name := envutil.String("TRAINING_DAY_TIMEZONE", ""); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			cfg.DayLocation = loc
		}
	}
	return cfg
}
