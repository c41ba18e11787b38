package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/mentalgym-backend/internal/http/response"
	"github.com/yungbote/mentalgym-backend/internal/platform/ctxutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type AuthConfig struct {
	// Secret is the HS256 key shared with the auth service.
	Secret   string
	Issuer   string
	Audience string
}

func AuthConfigFromEnv() AuthConfig {
	return AuthConfig{
		Secret:   envutil.String("JWT_SECRET", ""),
		Issuer:   envutil.String("JWT_ISSUER", ""),
		Audience: envutil.String("JWT_AUDIENCE", ""),
	}
}

// AuthMiddleware only verifies tokens; they are issued elsewhere.
type AuthMiddleware struct {
	log    *logger.Logger
	cfg    AuthConfig
	parser *jwt.Parser
}

func NewAuthMiddleware(log *logger.Logger, cfg AuthConfig) (*AuthMiddleware, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &AuthMiddleware{
		log:    log.With("middleware", "AuthMiddleware"),
		cfg:    cfg,
		parser: jwt.NewParser(opts...),
	}, nil
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
			return
		}
		userID, err := am.verify(tokenString)
		if err != nil {
			am.log.Debug("Token rejected", "error", err)
			response.AbortWithError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) verify(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := am.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(am.cfg.Secret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid subject")
	}
	return id, nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
