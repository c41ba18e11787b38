// Package plans resolves subscription plans to their limits and features.
package plans

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FeatureBlindSpots    = "blind_spots"
	FeatureWeeklyReports = "weekly_reports"

	// UpgradePlan is the cheapest plan that unlocks blind-spot insights.
	UpgradePlan = "pro"
)

//go:embed plans.yaml
var defaultPlans []byte

type Plan struct {
	Key      string `yaml:"-" json:"key"`
	MaxLevel int    `yaml:"max_level" json:"max_level"`
	// DailyExchanges caps scored exchanges per day; 0 means unlimited.
	DailyExchanges int      `yaml:"daily_exchanges" json:"daily_exchanges"`
	Paid           bool     `yaml:"paid" json:"paid"`
	Features       []string `yaml:"features" json:"features"`
}

func (p Plan) Has(feature string) bool {
	for _, f := range p.Features {
		if f == feature {
			return true
		}
	}
	return false
}

type file struct {
	Default string          `yaml:"default"`
	Plans   map[string]Plan `yaml:"plans"`
}

type Table struct {
	plans    map[string]Plan
	fallback string
}

// Load reads the plan table from path, or the built-in table when path is empty.
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(defaultPlans)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plans file: %w", err)
	}
	return Parse(raw)
}

func Default() *Table {
	t, err := Parse(defaultPlans)
	if err != nil {
		panic(err)
	}
	return t
}

func Parse(raw []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse plans: %w", err)
	}
	if len(f.Plans) == 0 {
		return nil, fmt.Errorf("plans: no plans defined")
	}
	t := &Table{plans: make(map[string]Plan, len(f.Plans)), fallback: f.Default}
	for key, p := range f.Plans {
		if p.MaxLevel < 1 || p.MaxLevel > 5 {
			return nil, fmt.Errorf("plans: %s max_level %d outside 1-5", key, p.MaxLevel)
		}
		if p.DailyExchanges < 0 {
			return nil, fmt.Errorf("plans: %s daily_exchanges must be >= 0", key)
		}
		p.Key = key
		t.plans[key] = p
	}
	if _, ok := t.plans[t.fallback]; !ok {
		return nil, fmt.Errorf("plans: default plan %q not defined", t.fallback)
	}
	return t, nil
}

// Get resolves a plan key; unknown keys resolve to the default plan.
func (t *Table) Get(key string) Plan {
	if p, ok := t.plans[strings.ToLower(strings.TrimSpace(key))]; ok {
		return p
	}
	return t.plans[t.fallback]
}

func (t *Table) HasFeature(planKey, feature string) bool {
	return t.Get(planKey).Has(feature)
}

func (t *Table) IsPaid(planKey string) bool {
	return t.Get(planKey).Paid
}

// KeysWithFeature lists plan keys granting feature, sorted.
func (t *Table) KeysWithFeature(feature string) []string {
	var out []string
	for key, p := range t.plans {
		if p.Has(feature) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
