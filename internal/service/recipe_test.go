package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/mocks"
	"github.com/pageza/recipebox/backend/internal/model"
	"github.com/pageza/recipebox/backend/internal/store"
)

func TestRecipeServiceDelegatesToStore(t *testing.T) {
	ctx := context.Background()
	st := new(mocks.MockStore)
	svc := NewRecipeService(st)

	in := model.RecipeInput{Name: "Smores", Ingredients: []string{"graham cracker"}}
	created := model.Recipe{ID: "1", Name: in.Name, Ingredients: in.Ingredients}

	st.On("Create", mock.Anything, in).Return(created, nil).Once()
	st.On("List", mock.Anything).Return([]model.Recipe{created}, nil).Once()
	st.On("Get", mock.Anything, "1").Return(created, nil).Once()
	st.On("Search", mock.Anything, "graham").Return([]model.Recipe{created}, nil).Once()
	st.On("Delete", mock.Anything, "1").Return(nil).Once()

	got, err := svc.CreateRecipe(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	list, err := svc.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Recipe{created}, list)

	got, err = svc.GetRecipe(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	found, err := svc.SearchRecipes(ctx, "graham")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, svc.DeleteRecipe(ctx, "1"))
	st.AssertExpectations(t)
}

func TestRecipeServicePropagatesErrors(t *testing.T) {
	ctx := context.Background()
	st := new(mocks.MockStore)
	svc := NewRecipeService(st)

	in := model.RecipeInput{Name: "x", Ingredients: []string{}}
	st.On("Update", mock.Anything, "missing", in).Return(model.Recipe{}, &store.NotFoundError{ID: "missing"})
	st.On("List", mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := svc.UpdateRecipe(ctx, "missing", in)
	assert.True(t, store.IsNotFound(err))

	_, err = svc.ListRecipes(ctx)
	assert.EqualError(t, err, "connection reset")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "invalid", outcome(&store.ValidationError{Field: "name", Message: "is required"}))
	assert.Equal(t, "not_found", outcome(&store.NotFoundError{ID: "1"}))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}

func TestRecipeServiceWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	svc := NewRecipeService(store.NewMemoryStore())

	created, err := svc.CreateRecipe(ctx, model.RecipeInput{Name: "milkshake", Ingredients: []string{"milk", "ice cream"}})
	require.NoError(t, err)

	updated, err := svc.UpdateRecipe(ctx, created.ID, model.RecipeInput{Name: "malted milkshake", Ingredients: []string{"milk", "ice cream", "malt"}})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	err = svc.DeleteRecipe(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.GetRecipe(ctx, created.ID)
	assert.True(t, store.IsNotFound(err))
}
