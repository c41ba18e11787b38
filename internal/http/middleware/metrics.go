package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentalgym-backend/internal/observability"
)

// Metrics records API latency by route template. Unmatched paths and the
// scrape endpoint itself are not recorded, so label cardinality stays bounded.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if m == nil || route == "" || route == "/metrics" {
			c.Next()
			return
		}
		m.APIInflight(1)
		start := time.Now()
		c.Next()
		m.APIInflight(-1)
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
