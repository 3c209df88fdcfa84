package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aide-systems/aide-core/internal/monitoring"
)

// MetricsMiddleware records request counts and latency by route template
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		monitoring.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
