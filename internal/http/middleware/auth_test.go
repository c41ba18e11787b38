package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/mentalgym-backend/internal/platform/ctxutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	am, err := NewAuthMiddleware(logger.NewNop(), AuthConfig{Secret: testSecret, Issuer: "auth.mentalgym"})
	if err != nil {
		t.Fatalf("NewAuthMiddleware: %v", err)
	}
	r := gin.New()
	r.Use(am.RequireAuth())
	r.GET("/me", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.UserID.String())
	})
	return r
}

func call(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	r := newAuthRouter(t)
	userID := uuid.New()
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    "auth.mentalgym",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	rec := call(r, token)
	if rec.Code != http.StatusOK || rec.Body.String() != userID.String() {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRequireAuthRejects(t *testing.T) {
	r := newAuthRouter(t)
	valid := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		Issuer:    "auth.mentalgym",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noExpiry := valid
	noExpiry.ExpiresAt = nil
	badSubject := valid
	badSubject.Subject = "not-a-uuid"
	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"

	cases := map[string]string{
		"missing":      "",
		"garbage":      "abc.def.ghi",
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("other"), valid),
		"expired":      sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
		"no expiry":    sign(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry),
		"bad subject":  sign(t, jwt.SigningMethodHS256, []byte(testSecret), badSubject),
		"wrong issuer": sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer),
		"hs512":        sign(t, jwt.SigningMethodHS512, []byte(testSecret), valid),
	}
	for name, token := range cases {
		if rec := call(r, token); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: got %d", name, rec.Code)
		}
	}
}

func TestNewAuthMiddlewareRequiresSecret(t *testing.T) {
	if _, err := NewAuthMiddleware(logger.NewNop(), AuthConfig{}); err == nil {
		t.Fatalf("expected error without secret")
	}
}
