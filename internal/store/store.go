// Package store holds recipe records, assigns their identities and enforces
// the shape every stored recipe must have.
package store

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/model"
)

// Store is the sole mutator of the recipe collection. Implementations apply
// each operation atomically, one at a time.
type Store interface {
	List(ctx context.Context) ([]model.Recipe, error)
	Get(ctx context.Context, id string) (model.Recipe, error)
	Create(ctx context.Context, in model.RecipeInput) (model.Recipe, error)
	Update(ctx context.Context, id string, in model.RecipeInput) (model.Recipe, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]model.Recipe, error)
}

// IDGenerator produces a new unique recipe identifier
type IDGenerator func() string

// NewUUID is the default IDGenerator
func NewUUID() string {
	return uuid.New().String()
}

type options struct {
	newID IDGenerator
}

// Option customises a store
type Option func(*options)

// WithIDGenerator overrides the id strategy. Default: NewUUID.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) { o.newID = gen }
}

func buildOptions(opts []Option) options {
	o := options{newID: NewUUID}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Validate checks a recipe input. It returns nil or a *ValidationError.
func Validate(in model.RecipeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if in.Ingredients == nil {
		return &ValidationError{Field: "ingredients", Message: "is required"}
	}
	return nil
}

// matches reports whether q (already lower-cased) occurs in the name or
// any ingredient of r.
func matches(r model.Recipe, q string) bool {
	if strings.Contains(strings.ToLower(r.Name), q) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing), q) {
			return true
		}
	}
	return false
}

func copyIngredients(in []string) []string {
	return append(make([]string, 0, len(in)), in...)
}
