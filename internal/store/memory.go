package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pageza/recipebox/backend/internal/model"
)

// MemoryStore keeps recipes in insertion order in process memory
type MemoryStore struct {
	mu      sync.Mutex
	recipes []model.Recipe
	index   map[string]int
	newID   IDGenerator
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		recipes: []model.Recipe{},
		index:   make(map[string]int),
		newID:   o.newID,
	}
}

// List returns every recipe in insertion order
func (s *MemoryStore) List(ctx context.Context) ([]model.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Recipe, len(s.recipes))
	for i, r := range s.recipes {
		out[i] = r.Clone()
	}
	return out, nil
}

// Get returns the recipe with the given id
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.Recipe{}, &NotFoundError{ID: id}
	}
	return s.recipes[i].Clone(), nil
}

// Create validates in, assigns a fresh id and appends the recipe
func (s *MemoryStore) Create(ctx context.Context, in model.RecipeInput) (model.Recipe, error) {
	if err := Validate(in); err != nil {
		return model.Recipe{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	if _, taken := s.index[id]; taken {
		return model.Recipe{}, fmt.Errorf("id generator returned duplicate id %q", id)
	}

	r := model.Recipe{
		ID:          id,
		Name:        in.Name,
		Ingredients: copyIngredients(in.Ingredients),
	}
	s.index[id] = len(s.recipes)
	s.recipes = append(s.recipes, r)
	return r.Clone(), nil
}

// Update replaces name and ingredients of an existing recipe in place
func (s *MemoryStore) Update(ctx context.Context, id string, in model.RecipeInput) (model.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.Recipe{}, &NotFoundError{ID: id}
	}
	if err := Validate(in); err != nil {
		return model.Recipe{}, err
	}

	s.recipes[i].Name = in.Name
	s.recipes[i].Ingredients = copyIngredients(in.Ingredients)
	return s.recipes[i].Clone(), nil
}

// Delete removes the recipe with the given id
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return &NotFoundError{ID: id}
	}

	s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.recipes); j++ {
		s.index[s.recipes[j].ID] = j
	}
	return nil
}

// Search returns recipes whose name or ingredients contain query
func (s *MemoryStore) Search(ctx context.Context, query string) ([]model.Recipe, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.List(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Recipe{}
	for _, r := range s.recipes {
		if matches(r, q) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// Len returns the number of stored recipes
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recipes)
}

// Restore appends previously stored recipes, keeping their ids. It is used
// when loading a snapshot and rejects records that break the store invariants.
func (s *MemoryStore) Restore(recipes []model.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(recipes))
	for _, r := range recipes {
		if r.ID == "" {
			return &ValidationError{Field: "id", Message: "is required"}
		}
		if _, dup := s.index[r.ID]; dup {
			return fmt.Errorf("recipe %q already present", r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("recipe %q appears twice in snapshot", r.ID)
		}
		if err := Validate(model.RecipeInput{Name: r.Name, Ingredients: r.Ingredients}); err != nil {
			return fmt.Errorf("recipe %q: %w", r.ID, err)
		}
		seen[r.ID] = struct{}{}
	}

	for _, r := range recipes {
		s.index[r.ID] = len(s.recipes)
		s.recipes = append(s.recipes, r.Clone())
	}
	return nil
}
