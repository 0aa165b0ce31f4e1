package service

import (
	"context"

	"github.com/pageza/recipebox/backend/internal/model"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListRecipes(ctx context.Context) ([]model.Recipe, error)
	GetRecipe(ctx context.Context, id string) (model.Recipe, error)
	CreateRecipe(ctx context.Context, in model.RecipeInput) (model.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, in model.RecipeInput) (model.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
	SearchRecipes(ctx context.Context, query string) ([]model.Recipe, error)
}
