package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aide-systems/aide-core/pkg/logger"
)

// Recovery converts a panic into a 500 JSON response and logs it
func Recovery(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		log.Error("Panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error"})
	})
}
