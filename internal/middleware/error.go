package middleware

import (
	"fmt"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/store"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps an error to its HTTP status and client-facing message
func StatusFor(err error) (int, string) {
	switch {
	case store.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case store.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// ErrorHandler turns errors attached with c.Error into JSON error responses
// and recovers from panics in later handlers.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				panicRecoveries.Inc()
				log.WithFields(log.Fields{
					"error":      fmt.Sprintf("%v", rec),
					"request_id": c.GetString(RequestIDKey),
					"method":     c.Request.Method,
					"path":       c.Request.URL.Path,
				}).Error("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, msg := StatusFor(err)
		if status >= http.StatusInternalServerError {
			log.WithError(err).WithField("request_id", c.GetString(RequestIDKey)).Error("request failed")
		}
		c.JSON(status, ErrorResponse{Error: msg})
	}
}
