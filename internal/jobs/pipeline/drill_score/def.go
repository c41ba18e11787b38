package drill_score

import (
	"context"
	"time"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	jobrt "github.com/yungbote/mentalgym-backend/internal/jobs/runtime"
	"github.com/yungbote/mentalgym-backend/internal/modules/training"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

// ResponseScorer is satisfied by training.Usecases.
type ResponseScorer interface {
	ScoreResponse(ctx context.Context, r training.DrillResponse) (*types.DrillScore, error)
}

type Pipeline struct {
	log    *logger.Logger
	scorer ResponseScorer
}

func New(baseLog *logger.Logger, scorer ResponseScorer) *Pipeline {
	return &Pipeline{
		log:    baseLog.With("job", types.JobTypeDrillScore),
		scorer: scorer,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeDrillScore }

func (p *Pipeline) RetryPolicy() jobrt.RetryPolicy {
	return jobrt.RetryPolicy{MaxAttempts: 3, Backoff: 5 * time.Second}
}
