package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type CriterionKind string

const (
	// KindFlag criteria are pass/fail booleans.
	KindFlag CriterionKind = "flag"
	// KindScale criteria carry a 1-10 value; values at or below
	// BlindSpotThreshold count as a failure.
	KindScale CriterionKind = "scale"
)

type Criterion struct {
	Key   string
	Label string
	Kind  CriterionKind
	// FailWhen is the flag value that counts as a failure ("hedged" fails on true).
	FailWhen bool
}

// DrillSchema is the closed set of criteria a drill type is scored on.
type DrillSchema struct {
	DrillType string
	Criteria  []Criterion
}

func (s DrillSchema) criterion(key string) (Criterion, bool) {
	for _, c := range s.Criteria {
		if c.Key == key {
			return c, true
		}
	}
	return Criterion{}, false
}

var drillSchemas = map[string]DrillSchema{
	"direct_answer": {DrillType: "direct_answer", Criteria: []Criterion{
		{Key: "answered_question", Label: "Answered the question", Kind: KindFlag, FailWhen: false},
		{Key: "hedged", Label: "Hedging language", Kind: KindFlag, FailWhen: true},
		{Key: "concise", Label: "Concise", Kind: KindFlag, FailWhen: false},
		{Key: "clarity", Label: "Clarity", Kind: KindScale},
	}},
	"pressure_hold": {DrillType: "pressure_hold", Criteria: []Criterion{
		{Key: "answered_question", Label: "Answered the question", Kind: KindFlag, FailWhen: false},
		{Key: "hedged", Label: "Hedging language", Kind: KindFlag, FailWhen: true},
		{Key: "stayed_composed", Label: "Stayed composed", Kind: KindFlag, FailWhen: false},
		{Key: "deflected", Label: "Deflected", Kind: KindFlag, FailWhen: true},
	}},
	"persuasive_pitch": {DrillType: "persuasive_pitch", Criteria: []Criterion{
		{Key: "clear_ask", Label: "Made a clear ask", Kind: KindFlag, FailWhen: false},
		{Key: "used_evidence", Label: "Used evidence", Kind: KindFlag, FailWhen: false},
		{Key: "hedged", Label: "Hedging language", Kind: KindFlag, FailWhen: true},
		{Key: "concise", Label: "Concise", Kind: KindFlag, FailWhen: false},
		{Key: "persuasiveness", Label: "Persuasiveness", Kind: KindScale},
	}},
	"tactic_spotting": {DrillType: "tactic_spotting", Criteria: []Criterion{
		{Key: "named_tactic", Label: "Named the tactic", Kind: KindFlag, FailWhen: false},
		{Key: "held_boundary", Label: "Held the boundary", Kind: KindFlag, FailWhen: false},
		{Key: "deflected", Label: "Deflected", Kind: KindFlag, FailWhen: true},
	}},
	"self_review": {DrillType: "self_review", Criteria: []Criterion{
		{Key: "owned_outcome", Label: "Owned the outcome", Kind: KindFlag, FailWhen: false},
		{Key: "specific_example", Label: "Gave a specific example", Kind: KindFlag, FailWhen: false},
		{Key: "concise", Label: "Concise", Kind: KindFlag, FailWhen: false},
	}},
}

var ErrUnknownDrillType = errors.New("unknown drill type")

func SchemaFor(drillType string) (DrillSchema, error) {
	s, ok := drillSchemas[strings.TrimSpace(drillType)]
	if !ok {
		return DrillSchema{}, fmt.Errorf("%w: %q", ErrUnknownDrillType, drillType)
	}
	return s, nil
}

func DrillTypes() []string {
	out := make([]string, 0, len(drillSchemas))
	for k := range drillSchemas {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// UniversalCriterion is a flag criterion shared by at least two drill types.
type UniversalCriterion struct {
	Key        string
	Label      string
	DrillTypes []string
}

// UniversalCriteria lists shared flag criteria ordered by key.
func UniversalCriteria() []UniversalCriterion {
	byKey := map[string]*UniversalCriterion{}
	for _, dt := range DrillTypes() {
		for _, c := range drillSchemas[dt].Criteria {
			if c.Kind != KindFlag {
				continue
			}
			u, ok := byKey[c.Key]
			if !ok {
				u = &UniversalCriterion{Key: c.Key, Label: c.Label}
				byKey[c.Key] = u
			}
			u.DrillTypes = append(u.DrillTypes, dt)
		}
	}
	out := make([]UniversalCriterion, 0, len(byKey))
	for _, u := range byKey {
		if len(u.DrillTypes) >= 2 {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// CriterionValue is one raw criterion outcome as reported by the scorer.
// Exactly one of Flag or Value must be set, matching the criterion kind.
type CriterionValue struct {
	Key   string   `json:"key"`
	Flag  *bool    `json:"flag"`
	Value *float64 `json:"value"`
}

// CriterionOutcome is a validated criterion with its failure judgment applied.
type CriterionOutcome struct {
	Key    string
	Passed bool
	Value  *float64
}

type ValidationError struct {
	DrillType string
	Problems  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid criteria for %s: %s", e.DrillType, strings.Join(e.Problems, "; "))
}

// ValidateCriteria checks values against the drill type's schema: every
// criterion present exactly once, no unknown keys, kinds matching.
func ValidateCriteria(drillType string, values []CriterionValue) ([]CriterionOutcome, error) {
	schema, err := SchemaFor(drillType)
	if err != nil {
		return nil, err
	}
	var problems []string
	seen := map[string]CriterionValue{}
	for _, v := range values {
		key := strings.TrimSpace(v.Key)
		if _, ok := schema.criterion(key); !ok {
			problems = append(problems, fmt.Sprintf("unknown criterion %q", key))
			continue
		}
		if _, dup := seen[key]; dup {
			problems = append(problems, fmt.Sprintf("duplicate criterion %q", key))
			continue
		}
		seen[key] = v
	}
	out := make([]CriterionOutcome, 0, len(schema.Criteria))
	for _, c := range schema.Criteria {
		v, ok := seen[c.Key]
		if !ok {
			problems = append(problems, fmt.Sprintf("missing criterion %q", c.Key))
			continue
		}
		switch c.Kind {
		case KindFlag:
			if v.Flag == nil || v.Value != nil {
				problems = append(problems, fmt.Sprintf("criterion %q expects a flag", c.Key))
				continue
			}
			out = append(out, CriterionOutcome{Key: c.Key, Passed: *v.Flag != c.FailWhen})
		case KindScale:
			if v.Value == nil || v.Flag != nil {
				problems = append(problems, fmt.Sprintf("criterion %q expects a value", c.Key))
				continue
			}
			if *v.Value < 1 || *v.Value > 10 {
				problems = append(problems, fmt.Sprintf("criterion %q value %.1f outside 1-10", c.Key, *v.Value))
				continue
			}
			val := *v.Value
			out = append(out, CriterionOutcome{Key: c.Key, Passed: val > BlindSpotThreshold, Value: &val})
		}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{DrillType: schema.DrillType, Problems: problems}
	}
	return out, nil
}

// DimensionScore is one dimension judgment reported by the scorer.
type DimensionScore struct {
	Key        string `json:"key"`
	Score      int    `json:"score"`
	Suggestion string `json:"suggestion"`
}

// Assessment is the scorer's full verdict on one response.
type Assessment struct {
	OverallScore float64          `json:"overall_score"`
	Criteria     []CriterionValue `json:"criteria"`
	Dimensions   []DimensionScore `json:"dimensions"`
}
