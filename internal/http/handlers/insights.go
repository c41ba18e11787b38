package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mentalgym-backend/internal/http/response"
	"github.com/yungbote/mentalgym-backend/internal/modules/insights"
)

type InsightsService interface {
	GetPageData(ctx context.Context, userID uuid.UUID) (*insights.GatedBlindSpotAnalysis, error)
}

type InsightsHandler struct {
	insights InsightsService
}

func NewInsightsHandler(svc InsightsService) *InsightsHandler {
	return &InsightsHandler{insights: svc}
}

// GET /api/insights/blind-spots
func (h *InsightsHandler) GetBlindSpots(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	page, err := h.insights.GetPageData(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err, "analysis_failed")
		return
	}
	response.RespondOK(c, page)
}
