package http

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
	httpH "github.com/yungbote/mentalgym-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mentalgym-backend/internal/http/middleware"
	"github.com/yungbote/mentalgym-backend/internal/modules/insights"
	"github.com/yungbote/mentalgym-backend/internal/modules/notifications"
	"github.com/yungbote/mentalgym-backend/internal/modules/training"
	"github.com/yungbote/mentalgym-backend/internal/platform/apierr"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

const secret = "router-test"

type fakeInsights struct{ userID uuid.UUID }

func (f *fakeInsights) GetPageData(ctx context.Context, userID uuid.UUID) (*insights.GatedBlindSpotAnalysis, error) {
	f.userID = userID
	reason := insights.GateInsufficientData
	return &insights.GatedBlindSpotAnalysis{GateReason: &reason, SessionsUntilInsights: 2, TotalSessions: 3, MinSessionsRequired: 5}, nil
}

type fakeTraining struct {
	startErr error
	complete training.SessionCompletedEvent
}

func (f *fakeTraining) StartSession(ctx context.Context, userID, modeID uuid.UUID) (*types.TrainingSession, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &types.TrainingSession{ID: uuid.New(), UserID: userID, PracticeModeID: modeID, Status: types.SessionStatusActive}, nil
}

func (f *fakeTraining) SubmitResponse(ctx context.Context, r training.DrillResponse) (*types.JobRun, error) {
	return &types.JobRun{ID: uuid.New(), OwnerUserID: r.UserID, JobType: types.JobTypeDrillScore}, nil
}

func (f *fakeTraining) CompleteSession(ctx context.Context, ev training.SessionCompletedEvent) (*training.CompletionResult, error) {
	f.complete = ev
	return &training.CompletionResult{LeveledUp: true}, nil
}

func (f *fakeTraining) AbandonSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.TrainingSession, error) {
	return nil, apierr.New(nethttp.StatusConflict, "session_not_active", errors.New("session is not active"))
}

func (f *fakeTraining) ListProgress(ctx context.Context, userID uuid.UUID) ([]*types.UserModeProgress, error) {
	return nil, errors.New("connection reset by peer")
}

type fakePrefs struct{}

func (fakePrefs) UpdateEmailPreferences(ctx context.Context, userID uuid.UUID, prefs notifications.EmailPreferences) (*types.User, error) {
	u := &types.User{ID: userID}
	if prefs.WeeklyReportsDisabled != nil {
		u.WeeklyReportsDisabled = *prefs.WeeklyReportsDisabled
	}
	return u, nil
}

type testRouter struct {
	engine   *gin.Engine
	insights *fakeInsights
	training *fakeTraining
	userID   uuid.UUID
	token    string
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	auth, err := httpMW.NewAuthMiddleware(log, httpMW.AuthConfig{Secret: secret})
	require.NoError(t, err)

	tr := &testRouter{insights: &fakeInsights{}, training: &fakeTraining{}, userID: uuid.New()}
	tr.engine = NewRouter(RouterConfig{
		Log:                log,
		AuthMiddleware:     auth,
		HealthHandler:      httpH.NewHealthHandler(nil),
		InsightsHandler:    httpH.NewInsightsHandler(tr.insights),
		SessionHandler:     httpH.NewSessionHandler(tr.training),
		PreferencesHandler: httpH.NewPreferencesHandler(fakePrefs{}),
	})
	tr.token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   tr.userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return tr
}

func (tr *testRouter) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+tr.token)
	}
	rec := httptest.NewRecorder()
	tr.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, rec)["error"].(map[string]any)
	return env["code"].(string)
}

func TestHealthcheckIsPublic(t *testing.T) {
	tr := newTestRouter(t)
	rec := tr.do(nethttp.MethodGet, "/healthcheck", "", false)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestBlindSpotsRequiresAuth(t *testing.T) {
	tr := newTestRouter(t)
	rec := tr.do(nethttp.MethodGet, "/api/insights/blind-spots", "", false)
	require.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))
}

func TestBlindSpotsLockedPage(t *testing.T) {
	tr := newTestRouter(t)
	rec := tr.do(nethttp.MethodGet, "/api/insights/blind-spots", "", true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["is_unlocked"])
	assert.Equal(t, "insufficient_data", body["gate_reason"])
	assert.Nil(t, body["blind_spots"])
	assert.Nil(t, body["total_responses"])
	assert.Equal(t, tr.userID, tr.insights.userID)
}

func TestStartSessionMapsAPIErrors(t *testing.T) {
	tr := newTestRouter(t)
	body := `{"practice_mode_id":"` + uuid.NewString() + `"}`

	rec := tr.do(nethttp.MethodPost, "/api/sessions", body, true)
	require.Equal(t, nethttp.StatusCreated, rec.Code)

	tr.training.startErr = apierr.New(nethttp.StatusForbidden, "level_locked", training.ErrLevelLocked)
	rec = tr.do(nethttp.MethodPost, "/api/sessions", body, true)
	require.Equal(t, nethttp.StatusForbidden, rec.Code)
	assert.Equal(t, "level_locked", errorCode(t, rec))

	rec = tr.do(nethttp.MethodPost, "/api/sessions", `{}`, true)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestCompleteSession(t *testing.T) {
	tr := newTestRouter(t)
	sessionID := uuid.New()

	rec := tr.do(nethttp.MethodPost, "/api/sessions/"+sessionID.String()+"/complete", `{"drills_completed":4,"duration_seconds":300}`, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["leveled_up"])
	assert.Equal(t, sessionID, tr.training.complete.SessionID)
	assert.Equal(t, tr.userID, tr.training.complete.UserID)
	assert.Equal(t, 4, tr.training.complete.DrillsCompleted)

	rec = tr.do(nethttp.MethodPost, "/api/sessions/nope/complete", `{}`, true)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = tr.do(nethttp.MethodPost, "/api/sessions/"+sessionID.String()+"/complete", `{"drills_completed":-1}`, true)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestSubmitResponseAccepted(t *testing.T) {
	tr := newTestRouter(t)
	rec := tr.do(nethttp.MethodPost, "/api/sessions/"+uuid.NewString()+"/responses",
		`{"drill_type":"direct_answer","response_text":"Yes."}`, true)
	require.Equal(t, nethttp.StatusAccepted, rec.Code)
}

func TestErrorsDoNotLeakInternals(t *testing.T) {
	tr := newTestRouter(t)

	rec := tr.do(nethttp.MethodPost, "/api/sessions/"+uuid.NewString()+"/abandon", "", true)
	require.Equal(t, nethttp.StatusConflict, rec.Code)
	assert.Equal(t, "session_not_active", errorCode(t, rec))

	rec = tr.do(nethttp.MethodGet, "/api/progress", "", true)
	require.Equal(t, nethttp.StatusInternalServerError, rec.Code)
	assert.Equal(t, "list_progress_failed", errorCode(t, rec))
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestUpdateEmailPreferences(t *testing.T) {
	tr := newTestRouter(t)
	rec := tr.do(nethttp.MethodPatch, "/api/me/email-preferences", `{"weekly_reports_disabled":true}`, true)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["weekly_reports_disabled"])
	assert.Equal(t, false, body["teaser_emails_disabled"])
}
