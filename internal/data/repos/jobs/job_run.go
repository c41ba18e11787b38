package jobs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type JobRunRepo interface {
	Create(dbc dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error)
	// ClaimNextRunnable picks the oldest queued job, a failed job whose retry
	// time has passed, or a running job whose heartbeat went stale.
	ClaimNextRunnable(dbc dbctx.Context, now time.Time, staleRunning time.Duration) (*types.JobRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Heartbeat(dbc dbctx.Context, id uuid.UUID) error
	ExistsRunnable(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string) (bool, error)
	CountByStatus(dbc dbctx.Context) (map[string]int64, error)
}

type jobRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return &jobRunRepo{db: db, log: baseLog.With("repo", "JobRunRepo")}
}

func (r *jobRunRepo) Create(dbc dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error) {
	if len(jobs) == 0 {
		return []*types.JobRun{}, nil
	}
	if err := dbc.Conn(r.db).Create(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error) {
	var job types.JobRun
	err := dbc.Conn(r.db).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRunRepo) ClaimNextRunnable(dbc dbctx.Context, now time.Time, staleRunning time.Duration) (*types.JobRun, error) {
	staleCutoff := now.Add(-staleRunning)
	var claimed *types.JobRun
	err := dbc.Conn(r.db).Transaction(func(txx *gorm.DB) error {
		var job types.JobRun
		qErr := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(`
        (
          status = ?
          OR (
            status = ?
            AND attempts < max_attempts
            AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
          )
          OR (
            status = ?
            AND heartbeat_at IS NOT NULL
            AND heartbeat_at < ?
          )
        )
      `, types.JobStatusQueued, types.JobStatusFailed, now, types.JobStatusRunning, staleCutoff).
			Order("created_at ASC").
			First(&job).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		if err := txx.Model(&types.JobRun{}).
			Where("id = ?", job.ID).
			Updates(map[string]interface{}{
				"status":       types.JobStatusRunning,
				"attempts":     gorm.Expr("attempts + 1"),
				"locked_at":    now,
				"heartbeat_at": now,
				"updated_at":   now,
			}).Error; err != nil {
			return err
		}
		job.Status = types.JobStatusRunning
		job.Attempts++
		claimed = &job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *jobRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.Conn(r.db).Model(&types.JobRun{}).Where("id = ?", id).Updates(updates).Error
}

func (r *jobRunRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return dbc.Conn(r.db).
		Model(&types.JobRun{}).
		Where("id = ? AND status = ?", id, types.JobStatusRunning).
		Updates(map[string]interface{}{"heartbeat_at": now, "updated_at": now}).Error
}

func (r *jobRunRepo) ExistsRunnable(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string) (bool, error) {
	var n int64
	err := dbc.Conn(r.db).
		Model(&types.JobRun{}).
		Where("owner_user_id = ? AND job_type = ?", ownerUserID, jobType).
		Where("(status IN ? OR (status = ? AND attempts < max_attempts))",
			[]string{types.JobStatusQueued, types.JobStatusRunning}, types.JobStatusFailed).
		Count(&n).Error
	return n > 0, err
}

func (r *jobRunRepo) CountByStatus(dbc dbctx.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		N      int64
	}
	if err := dbc.Conn(r.db).
		Model(&types.JobRun{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
