package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
)

// Dependencies are the collaborators the HTTP surface needs
type Dependencies struct {
	RecipeService   service.IRecipeService
	WriteLimiter    middleware.Limiter
	CORSOrigins     []string
	ReadinessChecks map[string]api.ReadinessCheck
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.ErrorHandler(),
		middleware.CORS(deps.CORSOrigins),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	recipeHandler := api.NewRecipeHandler(deps.RecipeService, deps.WriteLimiter)
	api.RegisterRoutes(router, recipeHandler, deps.ReadinessChecks)

	return router
}
