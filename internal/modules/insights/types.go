package insights

import (
	"github.com/yungbote/mentalgym-backend/internal/modules/insights/trend"
)

const (
	GateInsufficientData = "insufficient_data"
	GateRequiresUpgrade  = "requires_upgrade"
	GateUnlocked         = "unlocked"
)

type DimensionAnalysis struct {
	Key              string      `json:"key"`
	Label            string      `json:"label"`
	Category         string      `json:"category"`
	AverageScore     float64     `json:"average_score"`
	SampleSize       int         `json:"sample_size"`
	Trend            trend.Trend `json:"trend"`
	Change           float64     `json:"change"`
	LatestSuggestion string      `json:"latest_suggestion"`
	IsBlindSpot      bool        `json:"is_blind_spot"`
}

// UniversalPattern is a shared criterion the user fails across drill types.
type UniversalPattern struct {
	Key         string      `json:"key"`
	Label       string      `json:"label"`
	FailureRate float64     `json:"failure_rate"`
	SampleSize  int         `json:"sample_size"`
	DrillTypes  []string    `json:"drill_types"`
	Trend       trend.Trend `json:"trend"`
}

type BlindSpotAnalysis struct {
	HasEnoughData        bool  `json:"has_enough_data"`
	TotalSessions        int64 `json:"total_sessions"`
	TotalResponses       int64 `json:"total_responses"`
	MinSessionsRequired  int   `json:"min_sessions_required"`
	MinResponsesRequired int   `json:"min_responses_required"`

	BlindSpots        []DimensionAnalysis `json:"blind_spots"`
	Improving         []DimensionAnalysis `json:"improving"`
	Slipping          []DimensionAnalysis `json:"slipping"`
	Stable            []DimensionAnalysis `json:"stable"`
	UniversalPatterns []UniversalPattern  `json:"universal_patterns"`

	BiggestGap *DimensionAnalysis `json:"biggest_gap"`
	BiggestWin *DimensionAnalysis `json:"biggest_win"`
}

// HasFindings reports whether there is anything worth telling the user.
func (a *BlindSpotAnalysis) HasFindings() bool {
	if a == nil || !a.HasEnoughData {
		return false
	}
	return len(a.BlindSpots) > 0 || len(a.Improving) > 0 || len(a.Slipping) > 0 || len(a.UniversalPatterns) > 0
}

// GatedBlindSpotAnalysis is the page DTO. When IsUnlocked is false every
// detail field is nil.
type GatedBlindSpotAnalysis struct {
	IsUnlocked            bool    `json:"is_unlocked"`
	GateReason            *string `json:"gate_reason"`
	RequiredPlan          *string `json:"required_plan"`
	SessionsUntilInsights int     `json:"sessions_until_insights"`
	TotalSessions         int64   `json:"total_sessions"`
	MinSessionsRequired   int     `json:"min_sessions_required"`

	TotalResponses    *int64              `json:"total_responses"`
	BlindSpots        []DimensionAnalysis `json:"blind_spots"`
	Improving         []DimensionAnalysis `json:"improving"`
	Slipping          []DimensionAnalysis `json:"slipping"`
	Stable            []DimensionAnalysis `json:"stable"`
	UniversalPatterns []UniversalPattern  `json:"universal_patterns"`
	BiggestGap        *DimensionAnalysis  `json:"biggest_gap"`
	BiggestWin        *DimensionAnalysis  `json:"biggest_win"`
}

func insufficient(sessions, responses int64, cfg Config) *BlindSpotAnalysis {
	return &BlindSpotAnalysis{
		HasEnoughData:        false,
		TotalSessions:        sessions,
		TotalResponses:       responses,
		MinSessionsRequired:  cfg.MinSessions,
		MinResponsesRequired: cfg.MinResponses,
		BlindSpots:           []DimensionAnalysis{},
		Improving:            []DimensionAnalysis{},
		Slipping:             []DimensionAnalysis{},
		Stable:               []DimensionAnalysis{},
		UniversalPatterns:    []UniversalPattern{},
	}
}

func locked(reason string, sessions int64, cfg Config) *GatedBlindSpotAnalysis {
	r := reason
	until := cfg.MinSessions - int(sessions)
	if until < 0 {
		until = 0
	}
	return &GatedBlindSpotAnalysis{
		GateReason:            &r,
		SessionsUntilInsights: until,
		TotalSessions:         sessions,
		MinSessionsRequired:   cfg.MinSessions,
	}
}

func unlocked(a *BlindSpotAnalysis, cfg Config) *GatedBlindSpotAnalysis {
	responses := a.TotalResponses
	return &GatedBlindSpotAnalysis{
		IsUnlocked:          true,
		TotalSessions:       a.TotalSessions,
		MinSessionsRequired: cfg.MinSessions,
		TotalResponses:      &responses,
		BlindSpots:          a.BlindSpots,
		Improving:           a.Improving,
		Slipping:            a.Slipping,
		Stable:              a.Stable,
		UniversalPatterns:   a.UniversalPatterns,
		BiggestGap:          a.BiggestGap,
		BiggestWin:          a.BiggestWin,
	}
}
