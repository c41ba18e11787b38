package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/http/response"
	"github.com/yungbote/mentalgym-backend/internal/modules/training"
)

type TrainingService interface {
	StartSession(ctx context.Context, userID, modeID uuid.UUID) (*types.TrainingSession, error)
	SubmitResponse(ctx context.Context, r training.DrillResponse) (*types.JobRun, error)
	CompleteSession(ctx context.Context, ev training.SessionCompletedEvent) (*training.CompletionResult, error)
	AbandonSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.TrainingSession, error)
	ListProgress(ctx context.Context, userID uuid.UUID) ([]*types.UserModeProgress, error)
}

type SessionHandler struct {
	training TrainingService
}

func NewSessionHandler(svc TrainingService) *SessionHandler {
	return &SessionHandler{training: svc}
}

type startSessionRequest struct {
	PracticeModeID uuid.UUID `json:"practice_mode_id" binding:"required"`
}

// POST /api/sessions
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	s, err := h.training.StartSession(c.Request.Context(), userID, req.PracticeModeID)
	if err != nil {
		response.RespondAPIError(c, err, "start_session_failed")
		return
	}
	response.RespondCreated(c, gin.H{"session": s})
}

type submitResponseRequest struct {
	DrillType      string `json:"drill_type" binding:"required"`
	DrillPhase     string `json:"drill_phase"`
	Prompt         string `json:"prompt"`
	ResponseText   string `json:"response_text" binding:"required"`
	ResponseTimeMS int64  `json:"response_time_ms"`
	IsIteration    bool   `json:"is_iteration"`
}

// POST /api/sessions/:id/responses
func (h *SessionHandler) SubmitResponse(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "id", "invalid_session_id")
	if !ok {
		return
	}
	var req submitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	job, err := h.training.SubmitResponse(c.Request.Context(), training.DrillResponse{
		UserID:         userID,
		SessionID:      sessionID,
		DrillType:      req.DrillType,
		DrillPhase:     req.DrillPhase,
		Prompt:         req.Prompt,
		ResponseText:   req.ResponseText,
		ResponseTimeMS: req.ResponseTimeMS,
		IsIteration:    req.IsIteration,
	})
	if err != nil {
		response.RespondAPIError(c, err, "submit_response_failed")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

type completeSessionRequest struct {
	DrillsCompleted int                       `json:"drills_completed"`
	DurationSeconds int                       `json:"duration_seconds"`
	DrillScores     []types.DrillScoreSummary `json:"drill_scores"`
}

// POST /api/sessions/:id/complete
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "id", "invalid_session_id")
	if !ok {
		return
	}
	var req completeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.DrillsCompleted < 0 || req.DurationSeconds < 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errNegativeCounters)
		return
	}
	res, err := h.training.CompleteSession(c.Request.Context(), training.SessionCompletedEvent{
		UserID:          userID,
		SessionID:       sessionID,
		DrillsCompleted: req.DrillsCompleted,
		DurationSeconds: req.DurationSeconds,
		DrillScores:     req.DrillScores,
	})
	if err != nil {
		response.RespondAPIError(c, err, "complete_session_failed")
		return
	}
	response.RespondOK(c, res)
}

// POST /api/sessions/:id/abandon
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(c, "id", "invalid_session_id")
	if !ok {
		return
	}
	s, err := h.training.AbandonSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		response.RespondAPIError(c, err, "abandon_session_failed")
		return
	}
	response.RespondOK(c, gin.H{"session": s})
}

// GET /api/progress
func (h *SessionHandler) ListProgress(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	progress, err := h.training.ListProgress(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err, "list_progress_failed")
		return
	}
	response.RespondOK(c, gin.H{"progress": progress})
}

var errNegativeCounters = errors.New("drills_completed and duration_seconds must not be negative")
