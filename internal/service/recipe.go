package service

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pageza/recipebox/backend/internal/model"
	"github.com/pageza/recipebox/backend/internal/store"
)

var (
	recipeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipebox_recipe_operations_total",
			Help: "Total number of recipe store operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	recipeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipebox_recipe_operation_duration_seconds",
			Help:    "Recipe store operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// RecipeService handles recipe operations
type RecipeService struct {
	store store.Store
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(s store.Store) *RecipeService {
	return &RecipeService{store: s}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case store.IsValidation(err):
		return "invalid"
	case store.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

func observe(op string, start time.Time, err error) {
	recipeOperations.WithLabelValues(op, outcome(err)).Inc()
	recipeOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ListRecipes returns every stored recipe in insertion order
func (s *RecipeService) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	start := time.Now()
	recipes, err := s.store.List(ctx)
	observe("list", start, err)
	return recipes, err
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (model.Recipe, error) {
	start := time.Now()
	recipe, err := s.store.Get(ctx, id)
	observe("get", start, err)
	return recipe, err
}

// CreateRecipe creates a new recipe
func (s *RecipeService) CreateRecipe(ctx context.Context, in model.RecipeInput) (model.Recipe, error) {
	start := time.Now()
	recipe, err := s.store.Create(ctx, in)
	observe("create", start, err)
	if err != nil {
		return model.Recipe{}, err
	}

	log.WithFields(log.Fields{
		"recipe_id":   recipe.ID,
		"name":        recipe.Name,
		"ingredients": len(recipe.Ingredients),
	}).Info("recipe created")
	return recipe, nil
}

// UpdateRecipe replaces the name and ingredients of a recipe
func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, in model.RecipeInput) (model.Recipe, error) {
	start := time.Now()
	recipe, err := s.store.Update(ctx, id, in)
	observe("update", start, err)
	if err != nil {
		return model.Recipe{}, err
	}

	log.WithField("recipe_id", id).Info("recipe updated")
	return recipe, nil
}

// DeleteRecipe deletes a recipe
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) error {
	start := time.Now()
	err := s.store.Delete(ctx, id)
	observe("delete", start, err)
	if err != nil {
		return err
	}

	log.WithField("recipe_id", id).Info("recipe deleted")
	return nil
}

// SearchRecipes returns recipes whose name or ingredients contain query
func (s *RecipeService) SearchRecipes(ctx context.Context, query string) ([]model.Recipe, error) {
	start := time.Now()
	recipes, err := s.store.Search(ctx, query)
	observe("search", start, err)
	return recipes, err
}
