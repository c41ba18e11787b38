package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/mentalgym-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mentalgym-backend/internal/http/middleware"
	"github.com/yungbote/mentalgym-backend/internal/observability"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	// Tracing wraps every request in an otel span.
	Tracing bool
	Metrics *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	InsightsHandler    *httpH.InsightsHandler
	SessionHandler     *httpH.SessionHandler
	PreferencesHandler *httpH.PreferencesHandler
	JobHandler         *httpH.JobHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	protected := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.InsightsHandler != nil {
			protected.GET("/insights/blind-spots", cfg.InsightsHandler.GetBlindSpots)
		}

		if cfg.SessionHandler != nil {
			protected.GET("/progress", cfg.SessionHandler.ListProgress)
			protected.POST("/sessions", cfg.SessionHandler.StartSession)
			protected.POST("/sessions/:id/responses", cfg.SessionHandler.SubmitResponse)
			protected.POST("/sessions/:id/complete", cfg.SessionHandler.CompleteSession)
			protected.POST("/sessions/:id/abandon", cfg.SessionHandler.AbandonSession)
		}

		if cfg.PreferencesHandler != nil {
			protected.PATCH("/me/email-preferences", cfg.PreferencesHandler.UpdateEmailPreferences)
		}

		if cfg.JobHandler != nil {
			protected.GET("/jobs/:id", cfg.JobHandler.GetJob)
		}
	}

	return r
}
