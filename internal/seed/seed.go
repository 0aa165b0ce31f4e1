// Package seed fills an empty recipe store with starter recipes.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"

	"github.com/pageza/recipebox/backend/internal/model"
	"github.com/pageza/recipebox/backend/internal/store"
)

//go:embed recipes.yaml
var defaultRecipes []byte

type file struct {
	Recipes []model.RecipeInput `yaml:"recipes"`
}

// Parse reads a seed document
func Parse(data []byte) ([]model.RecipeInput, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, in := range f.Recipes {
		if err := store.Validate(in); err != nil {
			return nil, fmt.Errorf("seed recipe %d: %w", i+1, err)
		}
	}
	return f.Recipes, nil
}

// Default returns the built-in starter recipes
func Default() []model.RecipeInput {
	recipes, err := Parse(defaultRecipes)
	if err != nil {
		panic(err)
	}
	return recipes
}

// Load returns the recipes in path, or Default when path is empty
func Load(path string) ([]model.RecipeInput, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Apply creates every recipe in order and returns how many were created
func Apply(ctx context.Context, s store.Store, recipes []model.RecipeInput) (int, error) {
	for i, in := range recipes {
		r, err := s.Create(ctx, in)
		if err != nil {
			return i, fmt.Errorf("failed to seed %q: %w", in.Name, err)
		}
		log.WithFields(log.Fields{
			"recipe_id": r.ID,
			"name":      r.Name,
		}).Debug("seeded recipe")
	}
	return len(recipes), nil
}

// IfEmpty seeds s only when it holds no recipes
func IfEmpty(ctx context.Context, s store.Store, recipes []model.RecipeInput) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		log.WithField("recipes", len(existing)).Debug("store already populated, skipping seed")
		return 0, nil
	}
	return Apply(ctx, s, recipes)
}
