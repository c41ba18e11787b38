package training

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/mentalgym-backend/internal/domain/scoring"
	"github.com/yungbote/mentalgym-backend/internal/platform/openai"
)

const scorerInstructions = `You are a strict communication coach grading one response from a training drill.
Grade only what is in the response. For every criterion listed, report it exactly once:
flag criteria set "flag" and leave "value" at 0; scale criteria set "value" from 1 to 10 and leave "flag" false.
For every dimension listed, give an integer score from 1 (poor) to 10 (exemplary) using the anchors,
and one short, concrete suggestion the user can act on next time.
Also give an overall score from 1 to 10.`

type wireCriterion struct {
	Key   string  `json:"key" jsonschema:"required"`
	Flag  bool    `json:"flag" jsonschema:"required"`
	Value float64 `json:"value" jsonschema:"required"`
}

type wireDimension struct {
	Key        string `json:"key" jsonschema:"required"`
	Score      int    `json:"score" jsonschema:"required,minimum=1,maximum=10"`
	Suggestion string `json:"suggestion" jsonschema:"required"`
}

type wireAssessment struct {
	OverallScore float64         `json:"overall_score" jsonschema:"required"`
	Criteria     []wireCriterion `json:"criteria" jsonschema:"required"`
	Dimensions   []wireDimension `json:"dimensions" jsonschema:"required"`
}

type aiScorer struct {
	client openai.Client
	schema map[string]any
}

func NewAIScorer(client openai.Client) (Scorer, error) {
	if client == nil {
		return nil, fmt.Errorf("openai client required")
	}
	schema, err := openai.SchemaFor[wireAssessment]()
	if err != nil {
		return nil, fmt.Errorf("assessment schema: %w", err)
	}
	return &aiScorer{client: client, schema: schema}, nil
}

func (s *aiScorer) Score(ctx context.Context, req ScoreRequest) (*scoring.Assessment, error) {
	var out wireAssessment
	if err := s.client.GenerateJSON(ctx, openai.JSONRequest{
		Instructions: scorerInstructions,
		Input:        buildScorePrompt(req),
		SchemaName:   "drill_assessment",
		Schema:       s.schema,
	}, &out); err != nil {
		return nil, err
	}
	return out.toAssessment(req.Schema), nil
}

// toAssessment maps model output onto the drill schema's kinds. Keys the
// schema does not know are passed through so validation reports them.
func (w wireAssessment) toAssessment(schema scoring.DrillSchema) *scoring.Assessment {
	kinds := make(map[string]scoring.CriterionKind, len(schema.Criteria))
	for _, c := range schema.Criteria {
		kinds[c.Key] = c.Kind
	}
	a := &scoring.Assessment{OverallScore: w.OverallScore}
	for _, c := range w.Criteria {
		v := scoring.CriterionValue{Key: strings.TrimSpace(c.Key)}
		switch kinds[v.Key] {
		case scoring.KindScale:
			val := c.Value
			v.Value = &val
		default:
			flag := c.Flag
			v.Flag = &flag
		}
		a.Criteria = append(a.Criteria, v)
	}
	for _, d := range w.Dimensions {
		a.Dimensions = append(a.Dimensions, scoring.DimensionScore{
			Key:        strings.TrimSpace(d.Key),
			Score:      d.Score,
			Suggestion: d.Suggestion,
		})
	}
	return a
}

func buildScorePrompt(req ScoreRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Drill type: %s\n", req.DrillType)
	if req.DrillPhase != "" {
		fmt.Fprintf(&b, "Phase: %s\n", req.DrillPhase)
	}
	if req.Prompt != "" {
		fmt.Fprintf(&b, "\nPrompt given to the user:\n%s\n", req.Prompt)
	}
	fmt.Fprintf(&b, "\nUser response:\n%s\n", req.ResponseText)

	b.WriteString("\nCriteria:\n")
	for _, c := range req.Schema.Criteria {
		fmt.Fprintf(&b, "- %s (%s): %s\n", c.Key, c.Kind, c.Label)
	}
	b.WriteString("\nDimensions:\n")
	for _, d := range req.Dimensions {
		fmt.Fprintf(&b, "- %s: %s [%s]\n", d.Key, d.Label, d.Category)
		for _, anchor := range []struct{ name, text string }{
			{"low", d.AnchorLow}, {"mid", d.AnchorMid}, {"high", d.AnchorHigh}, {"exemplary", d.AnchorExemplary},
		} {
			if anchor.text != "" {
				fmt.Fprintf(&b, "    %s: %s\n", anchor.name, anchor.text)
			}
		}
	}
	return b.String()
}
