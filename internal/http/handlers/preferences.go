package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/http/response"
	"github.com/yungbote/mentalgym-backend/internal/modules/notifications"
)

type PreferencesService interface {
	UpdateEmailPreferences(ctx context.Context, userID uuid.UUID, prefs notifications.EmailPreferences) (*types.User, error)
}

type PreferencesHandler struct {
	prefs PreferencesService
}

func NewPreferencesHandler(svc PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{prefs: svc}
}

// PATCH /api/me/email-preferences
func (h *PreferencesHandler) UpdateEmailPreferences(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	var req notifications.EmailPreferences
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	u, err := h.prefs.UpdateEmailPreferences(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondAPIError(c, err, "update_preferences_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"teaser_emails_disabled":  u.TeaserEmailsDisabled,
		"weekly_reports_disabled": u.WeeklyReportsDisabled,
	})
}
