// Package seed loads the practice mode and skill dimension catalog.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/mentalgym-backend/internal/data/repos"
	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/domain/scoring"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Mode struct {
	Key      string `yaml:"key"`
	Name     string `yaml:"name"`
	Inactive bool   `yaml:"inactive"`
}

type Catalog struct {
	PracticeModes []Mode                  `yaml:"practice_modes"`
	Dimensions    []*types.SkillDimension `yaml:"dimensions"`
}

func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

type dimension struct {
	Key             string `yaml:"key"`
	Label           string `yaml:"label"`
	Category        string `yaml:"category"`
	AnchorLow       string `yaml:"anchor_low"`
	AnchorMid       string `yaml:"anchor_mid"`
	AnchorHigh      string `yaml:"anchor_high"`
	AnchorExemplary string `yaml:"anchor_exemplary"`
	Active          *bool  `yaml:"active"`
}

// Parse decodes and validates a catalog. Dimensions are active unless the
// file says otherwise.
func Parse(raw []byte) (*Catalog, error) {
	var doc struct {
		PracticeModes []Mode      `yaml:"practice_modes"`
		Dimensions    []dimension `yaml:"dimensions"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{PracticeModes: doc.PracticeModes}
	seen := map[string]bool{}
	for i, m := range c.PracticeModes {
		if strings.TrimSpace(m.Key) == "" || strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("practice mode %d: key and name are required", i)
		}
		if seen["mode:"+m.Key] {
			return nil, fmt.Errorf("duplicate practice mode %q", m.Key)
		}
		seen["mode:"+m.Key] = true
	}
	for _, d := range doc.Dimensions {
		if d.Key == "" || d.Label == "" {
			return nil, fmt.Errorf("dimension %q: key and label are required", d.Key)
		}
		if !scoring.IsCategory(d.Category) {
			return nil, fmt.Errorf("dimension %q: unknown category %q", d.Key, d.Category)
		}
		if seen["dim:"+d.Key] {
			return nil, fmt.Errorf("duplicate dimension %q", d.Key)
		}
		seen["dim:"+d.Key] = true
		c.Dimensions = append(c.Dimensions, &types.SkillDimension{
			Key:             d.Key,
			Label:           d.Label,
			Category:        d.Category,
			AnchorLow:       d.AnchorLow,
			AnchorMid:       d.AnchorMid,
			AnchorHigh:      d.AnchorHigh,
			AnchorExemplary: d.AnchorExemplary,
			Active:          d.Active == nil || *d.Active,
		})
	}
	return c, nil
}

// Sync upserts the catalog by key. Rows missing from the catalog are left
// untouched.
func Sync(dbc dbctx.Context, modes repos.PracticeModeRepo, dims repos.SkillDimensionRepo, c *Catalog) error {
	rows := make([]*types.PracticeMode, 0, len(c.PracticeModes))
	for _, m := range c.PracticeModes {
		rows = append(rows, &types.PracticeMode{Key: m.Key, Name: m.Name, Active: !m.Inactive})
	}
	if err := modes.Upsert(dbc, rows); err != nil {
		return fmt.Errorf("upsert practice modes: %w", err)
	}
	// Fresh rows so ids assigned by an earlier sync never collide.
	dimRows := make([]*types.SkillDimension, 0, len(c.Dimensions))
	for _, d := range c.Dimensions {
		cp := *d
		cp.ID = uuid.Nil
		dimRows = append(dimRows, &cp)
	}
	if err := dims.Upsert(dbc, dimRows); err != nil {
		return fmt.Errorf("upsert dimensions: %w", err)
	}
	return nil
}
