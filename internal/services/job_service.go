package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/mentalgym-backend/internal/data/repos"
	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/jobs/runtime"
	"github.com/yungbote/mentalgym-backend/internal/platform/ctxutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type EnqueueRequest struct {
	OwnerUserID uuid.UUID
	JobType     string
	EntityType  string
	EntityID    *uuid.UUID
	Payload     map[string]any
}

type JobService interface {
	// Enqueue writes a queued job_run on dbc (inside the caller's
	// transaction when there is one). The worker pool picks it up after commit.
	Enqueue(dbc dbctx.Context, req EnqueueRequest) (*types.JobRun, error)
	// EnqueueIfNotRunnable skips when the owner already has a runnable job of the type.
	EnqueueIfNotRunnable(dbc dbctx.Context, req EnqueueRequest) (*types.JobRun, bool, error)
	GetByID(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error)
}

type jobService struct {
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *runtime.Registry
}

func NewJobService(baseLog *logger.Logger, repo repos.JobRunRepo, registry *runtime.Registry) JobService {
	return &jobService{
		log:      baseLog.With("service", "JobService"),
		repo:     repo,
		registry: registry,
	}
}

func (s *jobService) Enqueue(dbc dbctx.Context, req EnqueueRequest) (*types.JobRun, error) {
	if req.OwnerUserID == uuid.Nil {
		return nil, fmt.Errorf("missing owner_user_id")
	}
	if req.JobType == "" {
		return nil, fmt.Errorf("missing job_type")
	}
	payload := req.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	if td := ctxutil.GetTraceData(dbc.Ctx); td != nil {
		if td.TraceID != "" {
			if _, ok := payload["trace_id"]; !ok {
				payload["trace_id"] = td.TraceID
			}
		}
		if td.RequestID != "" {
			if _, ok := payload["request_id"]; !ok {
				payload["request_id"] = td.RequestID
			}
		}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	policy := runtime.DefaultRetryPolicy
	if s.registry != nil {
		policy = s.registry.Policy(req.JobType)
	}
	now := time.Now().UTC()
	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: req.OwnerUserID,
		JobType:     req.JobType,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		Status:      types.JobStatusQueued,
		Stage:       "queued",
		MaxAttempts: policy.MaxAttempts,
		Payload:     datatypes.JSON(b),
		Result:      datatypes.JSON([]byte(`{}`)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.repo.Create(dbc, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.log.Debug("Job enqueued", "job_id", job.ID, "job_type", job.JobType, "user_id", job.OwnerUserID)
	return job, nil
}

func (s *jobService) EnqueueIfNotRunnable(dbc dbctx.Context, req EnqueueRequest) (*types.JobRun, bool, error) {
	has, err := s.repo.ExistsRunnable(dbc, req.OwnerUserID, req.JobType)
	if err != nil {
		return nil, false, err
	}
	if has {
		return nil, false, nil
	}
	job, err := s.Enqueue(dbc, req)
	if err != nil {
		return nil, false, err
	}
	return job, true, nil
}

func (s *jobService) GetByID(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error) {
	return s.repo.GetByID(dbc, jobID)
}
