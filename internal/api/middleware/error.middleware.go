package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/pkg/logger"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ErrorHandler turns the last error attached with c.Error into a JSON
// response. RelayError kinds pick the status code; anything else is a 500.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, detail := describe(err)

		fields := []interface{}{
			"status", status,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
			"error", err.Error(),
		}
		if requestID := c.Request.Header.Get("X-Request-ID"); requestID != "" {
			fields = append(fields, "request_id", requestID)
		}
		if status >= 500 {
			log.Error("HTTP Error", fields...)
		} else {
			log.Warn("HTTP Error", fields...)
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(status, ErrorResponse{Detail: detail})
	}
}

// describe maps an error onto its status code and client-facing detail
func describe(err error) (int, string) {
	var re *models.RelayError
	if errors.As(err, &re) {
		return re.Kind.HTTPStatus(), re.Message
	}
	return http.StatusInternalServerError, err.Error()
}
