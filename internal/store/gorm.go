package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipebox/backend/internal/model"
)

// GormStore keeps recipes in a SQL database through GORM. Insertion order is
// tracked by the seq column.
type GormStore struct {
	mu    sync.Mutex
	db    *gorm.DB
	newID IDGenerator
}

// NewGormStore creates a store over an already migrated database
func NewGormStore(db *gorm.DB, opts ...Option) *GormStore {
	o := buildOptions(opts)
	return &GormStore{
		db:    db,
		newID: o.newID,
	}
}

// List returns every recipe in insertion order
func (s *GormStore) List(ctx context.Context) ([]model.Recipe, error) {
	var rows []model.RecipeRecord
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return toRecipes(rows), nil
}

// Get returns the recipe with the given id
func (s *GormStore) Get(ctx context.Context, id string) (model.Recipe, error) {
	var row model.RecipeRecord
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Recipe{}, &NotFoundError{ID: id}
		}
		return model.Recipe{}, fmt.Errorf("failed to get recipe: %w", err)
	}
	return row.ToRecipe(), nil
}

// Create validates in, assigns a fresh id and appends the recipe
func (s *GormStore) Create(ctx context.Context, in model.RecipeInput) (model.Recipe, error) {
	if err := Validate(in); err != nil {
		return model.Recipe{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row := model.RecipeRecord{
		ID:          s.newID(),
		Name:        in.Name,
		Ingredients: model.JSONBStringArray(copyIngredients(in.Ingredients)),
		Embedding:   GenerateEmbedding(in.Name, in.Ingredients),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSeq(tx)
		if err != nil {
			return err
		}
		row.Seq = seq
		return tx.Create(&row).Error
	})
	if err != nil {
		return model.Recipe{}, fmt.Errorf("failed to create recipe: %w", err)
	}
	return row.ToRecipe(), nil
}

// Update replaces name and ingredients of an existing recipe in place
func (s *GormStore) Update(ctx context.Context, id string, in model.RecipeInput) (model.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row model.RecipeRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{ID: id}
			}
			return err
		}
		if err := Validate(in); err != nil {
			return err
		}

		row.Name = in.Name
		row.Ingredients = model.JSONBStringArray(copyIngredients(in.Ingredients))
		row.Embedding = GenerateEmbedding(in.Name, in.Ingredients)
		return tx.Save(&row).Error
	})
	if err != nil {
		if IsNotFound(err) || IsValidation(err) {
			return model.Recipe{}, err
		}
		return model.Recipe{}, fmt.Errorf("failed to update recipe: %w", err)
	}
	return row.ToRecipe(), nil
}

// Delete removes the recipe with the given id
func (s *GormStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.RecipeRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

// Search returns recipes whose name or any ingredient contains query. On
// postgres the matches are ranked by embedding distance to the query.
func (s *GormStore) Search(ctx context.Context, query string) ([]model.Recipe, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.List(ctx)
	}

	if s.db.Dialector.Name() != "postgres" && !isASCII(q) {
		// sqlite LOWER and LIKE only fold ASCII
		return s.searchInProcess(ctx, q)
	}

	like := "%" + escapeLike(q) + "%"
	dbQuery := s.db.WithContext(ctx)

	if s.db.Dialector.Name() == "postgres" {
		vec := GenerateEmbedding(q, nil)
		dbQuery = dbQuery.
			Where(`LOWER(name) LIKE ? ESCAPE '\' OR EXISTS (
				SELECT 1 FROM jsonb_array_elements_text(ingredients) AS ing(value)
				WHERE LOWER(ing.value) LIKE ? ESCAPE '\')`, like, like).
			Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?, seq ASC", Vars: []interface{}{vec}},
			})
	} else {
		dbQuery = dbQuery.
			Where(`LOWER(name) LIKE ? ESCAPE '\' OR EXISTS (
				SELECT 1 FROM json_each(recipes.ingredients)
				WHERE LOWER(json_each.value) LIKE ? ESCAPE '\')`, like, like).
			Order("seq ASC")
	}

	var rows []model.RecipeRecord
	if err := dbQuery.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return toRecipes(rows), nil
}

func (s *GormStore) searchInProcess(ctx context.Context, q string) ([]model.Recipe, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	out := []model.Recipe{}
	for _, r := range all {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// nextSeq allocates the next insertion position. Postgres draws from a
// sequence so that several processes can share one database; sqlite is
// only ever written by this process and takes MAX(seq)+1.
func nextSeq(tx *gorm.DB) (int64, error) {
	var seq int64
	if tx.Dialector.Name() == "postgres" {
		err := tx.Raw("SELECT nextval('recipes_seq_seq')").Row().Scan(&seq)
		return seq, err
	}
	if err := tx.Model(&model.RecipeRecord{}).Select("COALESCE(MAX(seq), 0)").Row().Scan(&seq); err != nil {
		return 0, err
	}
	return seq + 1, nil
}

func toRecipes(rows []model.RecipeRecord) []model.Recipe {
	out := make([]model.Recipe, len(rows))
	for i, row := range rows {
		out[i] = row.ToRecipe()
	}
	return out
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
