package insights

import (
	"github.com/yungbote/mentalgym-backend/internal/domain/scoring"
	"github.com/yungbote/mentalgym-backend/internal/modules/insights/trend"
	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
)

type Config struct {
	// MinSessions completed sessions before any analysis is shown.
	MinSessions int
	// MinResponses scored responses before the analysis has enough data.
	MinResponses int

	BlindSpotThreshold float64

	PatternMinSamples    int
	PatternMinDrillTypes int
	// PatternFailureRate must be exceeded for a universal criterion to be a pattern.
	PatternFailureRate float64

	ScoreTrend trend.Options
	RateTrend  trend.Options
}

func DefaultConfig() Config {
	return Config{
		MinSessions:          5,
		MinResponses:         10,
		BlindSpotThreshold:   scoring.BlindSpotThreshold,
		PatternMinSamples:    5,
		PatternMinDrillTypes: 2,
		PatternFailureRate:   0.6,
		ScoreTrend:           trend.ScoreOptions,
		RateTrend:            trend.RateOptions,
	}
}

func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.MinSessions = envutil.Int("INSIGHTS_MIN_SESSIONS", cfg.MinSessions)
	cfg.MinResponses = envutil.Int("INSIGHTS_MIN_RESPONSES", cfg.MinResponses)
	cfg.PatternMinSamples = envutil.Int("INSIGHTS_PATTERN_MIN_SAMPLES", cfg.PatternMinSamples)
	cfg.PatternFailureRate = envutil.Float("INSIGHTS_PATTERN_FAILURE_RATE", cfg.PatternFailureRate)
	return cfg
}
