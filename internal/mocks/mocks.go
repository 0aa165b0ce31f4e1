package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebox/backend/internal/model"
)

// MockStore is a mock implementation of store.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context) ([]model.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, id string) (model.Recipe, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Recipe), args.Error(1)
}

func (m *MockStore) Create(ctx context.Context, in model.RecipeInput) (model.Recipe, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Recipe), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, id string, in model.RecipeInput) (model.Recipe, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(model.Recipe), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) Search(ctx context.Context, query string) ([]model.Recipe, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}
