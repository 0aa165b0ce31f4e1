package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/model"
)

func TestMemoryStoreRestore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Restore([]model.Recipe{
		{ID: "a", Name: "Rice", Ingredients: []string{"rice"}},
		{ID: "b", Name: "Milkshake", Ingredients: []string{"milk"}},
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Milkshake", got.Name)

	created, err := s.Create(ctx, model.RecipeInput{Name: "Toast", Ingredients: []string{"bread"}})
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, created.ID, list[2].ID)
}

func TestMemoryStoreRestoreRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name    string
		recipes []model.Recipe
	}{
		{name: "missing id", recipes: []model.Recipe{{Name: "x", Ingredients: []string{}}}},
		{name: "duplicate id", recipes: []model.Recipe{
			{ID: "a", Name: "x", Ingredients: []string{}},
			{ID: "a", Name: "y", Ingredients: []string{}},
		}},
		{name: "missing ingredients", recipes: []model.Recipe{{ID: "a", Name: "x"}}},
		{name: "blank name", recipes: []model.Recipe{{ID: "a", Name: " ", Ingredients: []string{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStore()
			assert.Error(t, s.Restore(tt.recipes))
			assert.Zero(t, s.Len(), "restore is all or nothing")
		})
	}
}

func TestMemoryStoreDeleteReindexes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a", "b", "c", "d"} {
		r, err := s.Create(ctx, model.RecipeInput{Name: name, Ingredients: []string{}})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	require.NoError(t, s.Delete(ctx, ids[1]))

	for _, i := range []int{0, 2, 3} {
		r, err := s.Get(ctx, ids[i])
		require.NoError(t, err)
		assert.Equal(t, ids[i], r.ID)
	}

	r, err := s.Update(ctx, ids[3], model.RecipeInput{Name: "dd", Ingredients: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "dd", r.Name)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\`, escapeLike(`c:\`))
}

func TestGenerateEmbedding(t *testing.T) {
	a := GenerateEmbedding("Milkshake", []string{"milk", "ice cream"})
	b := GenerateEmbedding("Milkshake", []string{"milk", "ice cream"})
	assert.Equal(t, a.Slice(), b.Slice())
	assert.Len(t, a.Slice(), EmbeddingDimensions)

	var norm float32
	for _, v := range a.Slice() {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-5)

	empty := GenerateEmbedding("", nil)
	for _, v := range empty.Slice() {
		assert.Zero(t, v)
	}
}

func TestErrors(t *testing.T) {
	verr := &ValidationError{Field: "name", Message: "is required"}
	assert.Equal(t, "name: is required", verr.Error())
	assert.True(t, IsValidation(verr))
	assert.False(t, IsNotFound(verr))

	nf := &NotFoundError{ID: "x"}
	assert.Equal(t, `recipe "x" not found`, nf.Error())
	assert.True(t, IsNotFound(nf))
}
