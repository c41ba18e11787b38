package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentalgym-backend/internal/platform/ctxutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

// quietRoutes are polled by infrastructure and only logged at debug.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// RequestLogger writes one line per request once the handler chain returns.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		status := c.Writer.Status()
		fields := append([]interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}, ctxutil.LogFields(c.Request.Context())...)
		if route == "" {
			fields = append(fields, "path", c.Request.URL.Path)
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, "error", last.Error())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request failed", fields...)
		case status >= 400:
			log.Warn("HTTP request rejected", fields...)
		case quietRoutes[route]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
