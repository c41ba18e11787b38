package training

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/domain/scoring"
	"github.com/yungbote/mentalgym-backend/internal/platform/openai"
)

type fakeModel struct {
	reply string
	got   openai.JSONRequest
}

func (f *fakeModel) GenerateJSON(ctx context.Context, req openai.JSONRequest, out any) error {
	f.got = req
	return json.Unmarshal([]byte(f.reply), out)
}

func TestAIScorerMapsKindsAndValidates(t *testing.T) {
	model := &fakeModel{reply: `{
		"overall_score": 6,
		"criteria": [
			{"key": "answered_question", "flag": true, "value": 0},
			{"key": "hedged", "flag": false, "value": 0},
			{"key": "concise", "flag": true, "value": 0},
			{"key": "clarity", "flag": false, "value": 7}
		],
		"dimensions": [{"key": "directness", "score": 8, "suggestion": "Keep it up."}]
	}`}
	scorer, err := NewAIScorer(model)
	require.NoError(t, err)

	schema, err := scoring.SchemaFor("direct_answer")
	require.NoError(t, err)
	a, err := scorer.Score(context.Background(), ScoreRequest{
		DrillType:    "direct_answer",
		ResponseText: "Yes, we ship Friday.",
		Schema:       schema,
		Dimensions:   []*types.SkillDimension{{Key: "directness", Label: "Directness", AnchorLow: "Buries the answer"}},
	})
	require.NoError(t, err)

	outcomes, err := scoring.ValidateCriteria("direct_answer", a.Criteria)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)
	assert.Equal(t, "directness", a.Dimensions[0].Key)

	assert.Equal(t, "drill_assessment", model.got.SchemaName)
	assert.Equal(t, false, model.got.Schema["additionalProperties"])
	assert.True(t, strings.Contains(model.got.Input, "Yes, we ship Friday."))
	assert.True(t, strings.Contains(model.got.Input, "low: Buries the answer"))
}
