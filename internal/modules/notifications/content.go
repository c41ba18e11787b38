package notifications

import (
	"fmt"
	"strings"

	"github.com/yungbote/mentalgym-backend/internal/domain/scoring"
	"github.com/yungbote/mentalgym-backend/internal/modules/insights"
)

type Article struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// articles recommended for a biggest gap, by dimension category.
var articles = map[string]Article{
	scoring.CategoryCommunication:          {Title: "Answer first: the BLUF habit", URL: "https://mentalgym.app/learn/answer-first"},
	scoring.CategoryReasoning:              {Title: "Steelman before you swing", URL: "https://mentalgym.app/learn/steelman"},
	scoring.CategoryResilience:             {Title: "Staying level when the room turns", URL: "https://mentalgym.app/learn/staying-level"},
	scoring.CategoryInfluence:              {Title: "Make the ask, then stop talking", URL: "https://mentalgym.app/learn/make-the-ask"},
	scoring.CategorySelfAwareness:          {Title: "Reviewing your own tape", URL: "https://mentalgym.app/learn/review-your-tape"},
	scoring.CategoryManipulationResistance: {Title: "Naming the tactic out loud", URL: "https://mentalgym.app/learn/name-the-tactic"},
}

func ArticleFor(gap *insights.DimensionAnalysis) *Article {
	if gap == nil {
		return nil
	}
	a, ok := articles[gap.Category]
	if !ok {
		return nil
	}
	return &a
}

type WeeklyContent struct {
	Subject        string   `json:"subject"`
	Improving      []string `json:"improving"`
	NeedsWork      []string `json:"needs_work"`
	PatternToWatch string   `json:"pattern_to_watch"`
	WeeklyFocus    string   `json:"weekly_focus"`
	Article        *Article `json:"article,omitempty"`
}

// BuildWeeklyContent renders the weekly report model. ok is false when the
// analysis has nothing worth sending.
func BuildWeeklyContent(a *insights.BlindSpotAnalysis) (WeeklyContent, bool) {
	if !a.HasFindings() {
		return WeeklyContent{}, false
	}

	c := WeeklyContent{Improving: []string{}, NeedsWork: []string{}}
	for _, d := range a.Improving {
		c.Improving = append(c.Improving, fmt.Sprintf("%s (+%.1f)", d.Label, d.Change))
	}
	seen := map[string]bool{}
	for _, d := range a.BlindSpots {
		seen[d.Key] = true
		c.NeedsWork = append(c.NeedsWork, fmt.Sprintf("%s (avg %.1f)", d.Label, d.AverageScore))
	}
	for _, d := range a.Slipping {
		if seen[d.Key] {
			continue
		}
		c.NeedsWork = append(c.NeedsWork, fmt.Sprintf("%s (%.1f)", d.Label, d.Change))
	}

	if len(a.UniversalPatterns) > 0 {
		p := a.UniversalPatterns[0]
		c.PatternToWatch = fmt.Sprintf("%s shows up in %d%% of your answers across %s.",
			p.Label, int(p.FailureRate*100+0.5), strings.Join(p.DrillTypes, ", "))
	} else if len(a.Slipping) > 0 {
		c.PatternToWatch = fmt.Sprintf("%s has been slipping lately.", a.Slipping[0].Label)
	}

	switch {
	case a.BiggestGap != nil:
		c.WeeklyFocus = fmt.Sprintf("Focus on %s this week.", a.BiggestGap.Label)
		if a.BiggestGap.LatestSuggestion != "" {
			c.WeeklyFocus += " " + a.BiggestGap.LatestSuggestion
		}
		c.Article = ArticleFor(a.BiggestGap)
	case len(a.Slipping) > 0:
		c.WeeklyFocus = fmt.Sprintf("Win back %s this week.", a.Slipping[0].Label)
	case len(a.Improving) > 0:
		c.WeeklyFocus = fmt.Sprintf("Keep the momentum on %s.", a.Improving[0].Label)
	default:
		c.WeeklyFocus = fmt.Sprintf("Catch yourself on %s before you hit send.", a.UniversalPatterns[0].Label)
	}

	switch {
	case a.BiggestWin != nil && a.BiggestGap != nil:
		c.Subject = fmt.Sprintf("Your week: %s is up, %s needs work", a.BiggestWin.Label, a.BiggestGap.Label)
	case a.BiggestWin != nil:
		c.Subject = fmt.Sprintf("Your week: %s is up", a.BiggestWin.Label)
	case a.BiggestGap != nil:
		c.Subject = fmt.Sprintf("Your week: one thing to work on (%s)", a.BiggestGap.Label)
	default:
		c.Subject = "Your weekly blind spot report"
	}
	return c, true
}

func (c WeeklyContent) templateData(firstName string) map[string]any {
	data := map[string]any{
		"first_name":       firstName,
		"improving":        c.Improving,
		"needs_work":       c.NeedsWork,
		"pattern_to_watch": c.PatternToWatch,
		"weekly_focus":     c.WeeklyFocus,
		"article_title":    "",
		"article_url":      "",
	}
	if c.Article != nil {
		data["article_title"] = c.Article.Title
		data["article_url"] = c.Article.URL
	}
	return data
}
