package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kbrain/internal/model"
	"kbrain/internal/repository"
)

type MockScopeRepository struct {
	mock.Mock
}

func (m *MockScopeRepository) Create(ctx context.Context, scope *model.Scope) (*model.Scope, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scope), args.Error(1)
}

func (m *MockScopeRepository) FindByID(ctx context.Context, id string) (*model.Scope, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scope), args.Error(1)
}

func (m *MockScopeRepository) FindByName(ctx context.Context, name string) (*model.Scope, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scope), args.Error(1)
}

func (m *MockScopeRepository) List(ctx context.Context, isActive *bool, pq repository.PageQuery) (*repository.PageResult[model.Scope], error) {
	args := m.Called(ctx, isActive, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Scope]), args.Error(1)
}

func (m *MockScopeRepository) Update(ctx context.Context, scope *model.Scope) (*model.Scope, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scope), args.Error(1)
}

func (m *MockScopeRepository) Statistics(ctx context.Context, scopeID string) (*model.ScopeStatistics, error) {
	args := m.Called(ctx, scopeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScopeStatistics), args.Error(1)
}

func (m *MockScopeRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
