package seed

import (
	"context"
	"testing"

	"github.com/yungbote/mentalgym-backend/internal/data/repos"
	"github.com/yungbote/mentalgym-backend/internal/data/repos/testutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
)

func TestDefaultCatalogCoversEveryCategory(t *testing.T) {
	c := Default()
	if len(c.PracticeModes) == 0 {
		t.Fatalf("expected practice modes")
	}
	cats := map[string]bool{}
	for _, d := range c.Dimensions {
		if !d.Active {
			t.Fatalf("dimension %s should default to active", d.Key)
		}
		cats[d.Category] = true
	}
	if len(cats) != 6 {
		t.Fatalf("categories covered = %d", len(cats))
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	bad := map[string]string{
		"unknown category":  "dimensions:\n  - {key: a, label: A, category: charisma}\n",
		"duplicate dim":     "dimensions:\n  - {key: a, label: A, category: reasoning}\n  - {key: a, label: B, category: reasoning}\n",
		"mode without name": "practice_modes:\n  - {key: x}\n",
		"not yaml":          "dimensions: [",
	}
	for name, raw := range bad {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseHonorsInactive(t *testing.T) {
	c, err := Parse([]byte("dimensions:\n  - {key: a, label: A, category: reasoning, active: false}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Dimensions[0].Active {
		t.Fatalf("expected inactive dimension")
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	set := repos.NewSet(tx, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	c := Default()

	for i := 0; i < 2; i++ {
		if err := Sync(dbc, set.PracticeMode, set.SkillDimension, c); err != nil {
			t.Fatalf("Sync #%d: %v", i+1, err)
		}
	}
	dims, err := set.SkillDimension.ListActive(dbc)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(dims) != len(c.Dimensions) {
		t.Fatalf("dimensions = %d want %d", len(dims), len(c.Dimensions))
	}
	modes, err := set.PracticeMode.ListActive(dbc)
	if err != nil {
		t.Fatalf("ListActive modes: %v", err)
	}
	if len(modes) != len(c.PracticeModes) {
		t.Fatalf("modes = %d want %d", len(modes), len(c.PracticeModes))
	}
}
