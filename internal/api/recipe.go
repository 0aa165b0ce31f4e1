package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/store"
)

// RecipeHandler serves the /recipes resource
type RecipeHandler struct {
	recipeService service.IRecipeService
	writeLimiter  middleware.Limiter
}

// NewRecipeHandler creates a handler. A nil limiter disables rate limiting.
func NewRecipeHandler(recipeService service.IRecipeService, writeLimiter middleware.Limiter) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		writeLimiter:  writeLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	write := []gin.HandlerFunc{}
	if h.writeLimiter != nil {
		write = append(write, middleware.RateLimit(h.writeLimiter))
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", append(write, h.CreateRecipe)...)
		recipes.PUT("/:id", append(write, h.UpdateRecipe)...)
		recipes.DELETE("/:id", append(write, h.DeleteRecipe)...)
	}
}

func bindRecipe(c *gin.Context) (RecipeRequest, error) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return RecipeRequest{}, &store.ValidationError{Field: "body", Message: "must be a JSON recipe object"}
	}
	return req, nil
}

// ListRecipes returns every recipe, or the matches for ?q= when present
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()

	if q, ok := c.GetQuery("q"); ok && q != "" {
		recipes, err := h.recipeService.SearchRecipes(ctx, q)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, recipes)
		return
	}

	recipes, err := h.recipeService.ListRecipes(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe stores a new recipe. Any id in the body is ignored.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	req, err := bindRecipe(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), req.Input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id := c.Param("id")
	req, err := bindRecipe(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if req.ID != "" && req.ID != id {
		_ = c.Error(&store.ValidationError{Field: "id", Message: "does not match the recipe being updated"})
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), id, req.Input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
