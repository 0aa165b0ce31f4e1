package api

import (
	"context"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether a dependency is able to serve traffic
type ReadinessCheck func(ctx context.Context) error

// HealthCheck returns the liveness status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

// Ready runs every named check and reports 503 if any fails
func Ready(checks map[string]ReadinessCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := HealthResponse{Status: "ready", Checks: map[string]string{}}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.WithError(err).WithField("check", name).Warn("readiness check failed")
				resp.Checks[name] = err.Error()
				resp.Status = "not ready"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		c.JSON(status, resp)
	}
}

// RegisterRoutes registers the health endpoints and the recipe resource
func RegisterRoutes(router *gin.Engine, recipeHandler *RecipeHandler, checks map[string]ReadinessCheck) {
	router.GET("/health", HealthCheck)
	router.GET("/ready", Ready(checks))

	recipeHandler.RegisterRoutes(&router.RouterGroup)
}
