package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// Recipe is the public shape of a stored recipe
type Recipe struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Ingredients []string `json:"ingredients" yaml:"ingredients"`
}

// RecipeInput carries the client-controlled fields of a recipe.
// A nil Ingredients slice means the field was not supplied.
type RecipeInput struct {
	Name        string   `json:"name" yaml:"name"`
	Ingredients []string `json:"ingredients" yaml:"ingredients"`
}

// Clone returns a copy that shares no memory with r
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = append(make([]string, 0, len(r.Ingredients)), r.Ingredients...)
	return out
}

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported ingredients column type %T", value)
	}

	out := JSONBStringArray{}
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	*a = out
	return nil
}

// RecipeRecord is the database row backing a Recipe
type RecipeRecord struct {
	ID          string           `gorm:"type:text;primaryKey"`
	Seq         int64            `gorm:"not null;uniqueIndex"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string           `gorm:"type:text;not null"`
	Ingredients JSONBStringArray `gorm:"type:jsonb;not null"`
	Embedding   pgvector.Vector  `gorm:"type:vector(32)"`
}

// TableName pins the table name used by migrations
func (RecipeRecord) TableName() string {
	return "recipes"
}

// ToRecipe converts the row into its public shape
func (r RecipeRecord) ToRecipe() Recipe {
	ingredients := []string(r.Ingredients)
	if ingredients == nil {
		ingredients = []string{}
	}
	return Recipe{
		ID:          r.ID,
		Name:        r.Name,
		Ingredients: ingredients,
	}
}
