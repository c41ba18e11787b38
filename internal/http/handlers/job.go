package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentalgym-backend/internal/http/response"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
	"github.com/yungbote/mentalgym-backend/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	jobID, ok := uuidParam(c, "id", "invalid_job_id")
	if !ok {
		return
	}
	job, err := h.jobs.GetByID(dbctx.Context{Ctx: c.Request.Context()}, jobID)
	if err != nil {
		response.RespondAPIError(c, err, "get_job_failed")
		return
	}
	// Other users' jobs look missing.
	if job == nil || job.OwnerUserID != userID {
		response.RespondError(c, http.StatusNotFound, "job_not_found", errors.New("job not found"))
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}
