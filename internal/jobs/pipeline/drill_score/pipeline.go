package drill_score

import (
	"fmt"

	"github.com/google/uuid"

	jobrt "github.com/yungbote/mentalgym-backend/internal/jobs/runtime"
	"github.com/yungbote/mentalgym-backend/internal/modules/training"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	var r training.DrillResponse
	if err := jc.DecodePayload(&r); err != nil {
		jc.Fail("validate", fmt.Errorf("decode payload: %w", err))
		return nil
	}
	if r.UserID == uuid.Nil || r.SessionID == uuid.Nil || r.DrillType == "" {
		jc.Fail("validate", fmt.Errorf("missing user_id, session_id or drill_type"))
		return nil
	}

	r.JobRunID = jc.Job.ID

	jc.Progress("score")
	score, err := p.scorer.ScoreResponse(jc.Ctx, r)
	if err != nil {
		jc.Fail("score", err)
		return nil
	}

	jc.Succeed("done", map[string]any{
		"drill_score_id": score.ID.String(),
		"overall_score":  score.OverallScore,
	})
	return nil
}
