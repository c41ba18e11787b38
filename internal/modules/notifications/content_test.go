package notifications

import (
	"testing"

	"github.com/yungbote/mentalgym-backend/internal/modules/insights"
)

func TestBuildWeeklyContent(t *testing.T) {
	c, ok := BuildWeeklyContent(findings())
	if !ok {
		t.Fatalf("expected content")
	}
	if len(c.Improving) != 1 || c.Improving[0] != "Directness (+2.5)" {
		t.Fatalf("improving = %v", c.Improving)
	}
	if len(c.NeedsWork) != 1 || c.NeedsWork[0] != "Composure (avg 3.2)" {
		t.Fatalf("needs work = %v", c.NeedsWork)
	}
	if c.PatternToWatch != "Hedging shows up in 75% of your answers across direct_answer, pushback." {
		t.Fatalf("pattern = %q", c.PatternToWatch)
	}
	if c.WeeklyFocus != "Focus on Composure this week. Pause before you answer." {
		t.Fatalf("focus = %q", c.WeeklyFocus)
	}
	if c.Article == nil || c.Article.URL == "" {
		t.Fatalf("expected an article for the resilience gap")
	}

	data := c.templateData("Ada")
	if data["article_title"] != c.Article.Title || data["first_name"] != "Ada" {
		t.Fatalf("template data = %v", data)
	}
}

func TestBuildWeeklyContentNothingToReport(t *testing.T) {
	for _, a := range []*insights.BlindSpotAnalysis{
		nil,
		{HasEnoughData: false, BlindSpots: findings().BlindSpots},
		{HasEnoughData: true},
	} {
		if _, ok := BuildWeeklyContent(a); ok {
			t.Fatalf("expected no content for %+v", a)
		}
	}
}

func TestBuildWeeklyContentPatternOnly(t *testing.T) {
	a := &insights.BlindSpotAnalysis{HasEnoughData: true, UniversalPatterns: findings().UniversalPatterns}
	c, ok := BuildWeeklyContent(a)
	if !ok {
		t.Fatalf("expected content")
	}
	if c.Article != nil {
		t.Fatalf("no gap means no article")
	}
	if c.Subject != "Your weekly blind spot report" {
		t.Fatalf("subject = %q", c.Subject)
	}
	if c.WeeklyFocus != "Catch yourself on Hedging before you hit send." {
		t.Fatalf("focus = %q", c.WeeklyFocus)
	}
}
