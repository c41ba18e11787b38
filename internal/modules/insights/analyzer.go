package insights

import (
	"sort"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/domain/scoring"
	"github.com/yungbote/mentalgym-backend/internal/modules/insights/trend"
)

const epsilon = 1e-9

// Observations is everything the analyzer reads for one user. Blind spot
// and criterion rows must be ordered oldest first.
type Observations struct {
	TotalSessions  int64
	TotalResponses int64
	Dimensions     []*types.SkillDimension
	BlindSpots     []*types.BlindSpot
	Criteria       []*types.DrillCriterionResult
}

func hasEnoughData(sessions, responses int64, cfg Config) bool {
	return sessions >= int64(cfg.MinSessions) && responses >= int64(cfg.MinResponses)
}

// Build derives the analysis from stored observations. It reads no clock
// and no storage, so equal input yields equal output.
func Build(obs Observations, cfg Config) *BlindSpotAnalysis {
	if !hasEnoughData(obs.TotalSessions, obs.TotalResponses, cfg) {
		return insufficient(obs.TotalSessions, obs.TotalResponses, cfg)
	}
	out := insufficient(obs.TotalSessions, obs.TotalResponses, cfg)
	out.HasEnoughData = true

	dims := analyzeDimensions(obs, cfg)
	for _, d := range dims {
		if d.IsBlindSpot {
			out.BlindSpots = append(out.BlindSpots, d)
		}
		switch d.Trend {
		case trend.Improving:
			out.Improving = append(out.Improving, d)
		case trend.Slipping:
			out.Slipping = append(out.Slipping, d)
		case trend.Stable:
			out.Stable = append(out.Stable, d)
		}
	}
	sort.SliceStable(out.BlindSpots, func(i, j int) bool {
		a, b := out.BlindSpots[i], out.BlindSpots[j]
		if a.AverageScore != b.AverageScore {
			return a.AverageScore < b.AverageScore
		}
		if a.SampleSize != b.SampleSize {
			return a.SampleSize > b.SampleSize
		}
		return a.Key < b.Key
	})
	sort.SliceStable(out.Improving, func(i, j int) bool {
		a, b := out.Improving[i], out.Improving[j]
		if a.Change != b.Change {
			return a.Change > b.Change
		}
		if a.SampleSize != b.SampleSize {
			return a.SampleSize > b.SampleSize
		}
		return a.Key < b.Key
	})
	sort.SliceStable(out.Slipping, func(i, j int) bool {
		a, b := out.Slipping[i], out.Slipping[j]
		if a.Change != b.Change {
			return a.Change < b.Change
		}
		return a.Key < b.Key
	})
	sort.SliceStable(out.Stable, func(i, j int) bool { return out.Stable[i].Key < out.Stable[j].Key })

	// Sorted orders already encode the tie-breaks.
	if len(out.BlindSpots) > 0 {
		gap := out.BlindSpots[0]
		out.BiggestGap = &gap
	}
	if len(out.Improving) > 0 {
		win := out.Improving[0]
		out.BiggestWin = &win
	}

	out.UniversalPatterns = analyzePatterns(obs.Criteria, cfg)
	return out
}

func analyzeDimensions(obs Observations, cfg Config) []DimensionAnalysis {
	registry := make(map[string]*types.SkillDimension, len(obs.Dimensions))
	for _, d := range obs.Dimensions {
		if d != nil {
			registry[d.Key] = d
		}
	}

	type history struct {
		scores     []int
		suggestion string
	}
	byKey := map[string]*history{}
	for _, bs := range obs.BlindSpots {
		if bs == nil {
			continue
		}
		h, ok := byKey[bs.DimensionKey]
		if !ok {
			h = &history{}
			byKey[bs.DimensionKey] = h
		}
		h.scores = append(h.scores, bs.Score)
		if bs.Suggestion != "" {
			h.suggestion = bs.Suggestion
		}
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]DimensionAnalysis, 0, len(keys))
	for _, key := range keys {
		h := byKey[key]
		values := trend.FromScores(h.scores)
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		avg := sum / float64(len(values))
		res := trend.Classify(values, cfg.ScoreTrend)

		da := DimensionAnalysis{
			Key:              key,
			Label:            key,
			AverageScore:     trend.Round2(avg),
			SampleSize:       len(values),
			Trend:            res.Trend,
			Change:           trend.Round2(res.Change),
			LatestSuggestion: h.suggestion,
			IsBlindSpot:      avg <= cfg.BlindSpotThreshold+epsilon,
		}
		if d, ok := registry[key]; ok {
			da.Label = d.Label
			da.Category = d.Category
		}
		out = append(out, da)
	}
	return out
}

func analyzePatterns(rows []*types.DrillCriterionResult, cfg Config) []UniversalPattern {
	byKey := map[string][]*types.DrillCriterionResult{}
	for _, r := range rows {
		if r != nil {
			byKey[r.CriterionKey] = append(byKey[r.CriterionKey], r)
		}
	}

	out := []UniversalPattern{}
	for _, uc := range scoring.UniversalCriteria() {
		obs := byKey[uc.Key]
		if len(obs) < cfg.PatternMinSamples {
			continue
		}
		seen := map[string]bool{}
		failed := make([]bool, 0, len(obs))
		failures := 0
		for _, r := range obs {
			seen[r.DrillType] = true
			failed = append(failed, !r.Passed)
			if !r.Passed {
				failures++
			}
		}
		if len(seen) < cfg.PatternMinDrillTypes {
			continue
		}
		rate := float64(failures) / float64(len(obs))
		if rate <= cfg.PatternFailureRate+epsilon {
			continue
		}
		drillTypes := make([]string, 0, len(seen))
		for dt := range seen {
			drillTypes = append(drillTypes, dt)
		}
		sort.Strings(drillTypes)
		out = append(out, UniversalPattern{
			Key:         uc.Key,
			Label:       uc.Label,
			FailureRate: trend.Round2(rate),
			SampleSize:  len(obs),
			DrillTypes:  drillTypes,
			Trend:       trend.Classify(trend.FromFailures(failed), cfg.RateTrend).Trend,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.FailureRate != b.FailureRate {
			return a.FailureRate > b.FailureRate
		}
		if a.SampleSize != b.SampleSize {
			return a.SampleSize > b.SampleSize
		}
		return a.Key < b.Key
	})
	return out
}
