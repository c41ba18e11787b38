package teaser_email

import (
	"fmt"

	jobrt "github.com/yungbote/mentalgym-backend/internal/jobs/runtime"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	userID, ok := jc.PayloadUUID("user_id")
	if !ok {
		jc.Fail("validate", fmt.Errorf("missing user_id"))
		return nil
	}

	jc.Progress("send")
	sent, err := p.sender.SendTeaser(jc.Ctx, userID, p.now().UTC())
	if err != nil {
		jc.Fail("send", err)
		return nil
	}
	jc.Succeed("done", map[string]any{
		"user_id": userID.String(),
		"sent":    sent,
	})
	return nil
}
