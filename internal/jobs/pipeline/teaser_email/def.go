package teaser_email

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

// TeaserSender is satisfied by notifications.Usecases.
type TeaserSender interface {
	SendTeaser(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error)
}

type Pipeline struct {
	log    *logger.Logger
	sender TeaserSender
	now    func() time.Time
}

func New(baseLog *logger.Logger, sender TeaserSender) *Pipeline {
	return &Pipeline{
		log:    baseLog.With("job", types.JobTypeTeaserEmail),
		sender: sender,
		now:    time.Now,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeTeaserEmail }
