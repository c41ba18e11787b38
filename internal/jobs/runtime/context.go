package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/mentalgym-backend/internal/data/repos"
	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

/*
Context is the execution handle for a single claimed job run. Pipelines
never write job_run directly; they report through Progress, Succeed and Fail.
*/
type Context struct {
	Ctx    context.Context
	DB     *gorm.DB
	Job    *types.JobRun
	Repo   repos.JobRunRepo
	Log    *logger.Logger
	Policy RetryPolicy

	payload map[string]any
}

func NewContext(ctx context.Context, db *gorm.DB, job *types.JobRun, repo repos.JobRunRepo, log *logger.Logger, policy RetryPolicy) *Context {
	c := &Context{
		Ctx:    ctx,
		DB:     db,
		Job:    job,
		Repo:   repo,
		Log:    log,
		Policy: policy,
	}
	if job != nil {
		c.Log = log.With("job_id", job.ID, "job_type", job.JobType, "attempt", job.Attempts)
	}
	_ = c.decodePayload()
	return c
}

func (c *Context) decodePayload() error {
	c.payload = map[string]any{}
	if c.Job == nil || len(c.Job.Payload) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(c.Job.Payload, &m); err != nil {
		return err
	}
	if m != nil {
		c.payload = m
	}
	return nil
}

// Payload never returns nil.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

func (c *Context) PayloadUUID(key string) (uuid.UUID, bool) {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(fmt.Sprint(v))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func (c *Context) PayloadString(key string) string {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// DecodePayload unmarshals the raw payload into dst.
func (c *Context) DecodePayload(dst any) error {
	if c.Job == nil || len(c.Job.Payload) == 0 {
		return fmt.Errorf("empty payload")
	}
	return json.Unmarshal(c.Job.Payload, dst)
}

func (c *Context) ctx() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// Progress records the current stage and refreshes the heartbeat.
func (c *Context) Progress(stage string) {
	if c == nil || c.Job == nil {
		return
	}
	now := time.Now().UTC()
	if c.Repo != nil {
		if err := c.Repo.UpdateFields(dbctx.Context{Ctx: c.ctx()}, c.Job.ID, map[string]interface{}{
			"stage":        stage,
			"heartbeat_at": now,
		}); err != nil {
			c.Log.Warn("job progress update failed", "error", err)
		}
	}
	c.Job.Stage = stage
	c.Job.HeartbeatAt = &now
}

// Fail records the error. While attempts remain the run becomes claimable
// again after the policy backoff; otherwise it stays failed.
func (c *Context) Fail(stage string, err error) {
	if c == nil || c.Job == nil {
		return
	}
	now := time.Now().UTC()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	updates := map[string]interface{}{
		"status":        types.JobStatusFailed,
		"stage":         stage,
		"error":         msg,
		"last_error_at": now,
		"locked_at":     nil,
	}
	retrying := c.Job.Attempts < c.Job.MaxAttempts
	if retrying {
		next := now.Add(c.Policy.Backoff)
		updates["next_attempt_at"] = next
		c.Job.NextAttemptAt = &next
	}
	if c.Repo != nil {
		if uerr := c.Repo.UpdateFields(dbctx.Context{Ctx: c.ctx()}, c.Job.ID, updates); uerr != nil {
			c.Log.Error("job fail update failed", "error", uerr)
		}
	}
	c.Job.Status = types.JobStatusFailed
	c.Job.Stage = stage
	c.Job.Error = msg
	c.Job.LastErrorAt = &now
	c.Job.LockedAt = nil

	if retrying {
		c.Log.Warn("Job failed; will retry", "stage", stage, "error", msg, "max_attempts", c.Job.MaxAttempts)
	} else {
		c.Log.Error("Job failed; giving up", "stage", stage, "error", msg, "max_attempts", c.Job.MaxAttempts)
	}
}

func (c *Context) Succeed(finalStage string, result any) {
	if c == nil || c.Job == nil {
		return
	}
	now := time.Now().UTC()
	res := datatypes.JSON([]byte(`{}`))
	if result != nil {
		if b, err := json.Marshal(result); err == nil {
			res = datatypes.JSON(b)
		}
	}
	if c.Repo != nil {
		if err := c.Repo.UpdateFields(dbctx.Context{Ctx: c.ctx()}, c.Job.ID, map[string]interface{}{
			"status":       types.JobStatusSucceeded,
			"stage":        finalStage,
			"error":        "",
			"result":       res,
			"locked_at":    nil,
			"heartbeat_at": now,
		}); err != nil {
			c.Log.Error("job succeed update failed", "error", err)
		}
	}
	c.Job.Status = types.JobStatusSucceeded
	c.Job.Stage = finalStage
	c.Job.Error = ""
	c.Job.Result = res
	c.Job.LockedAt = nil
	c.Job.HeartbeatAt = &now
}
