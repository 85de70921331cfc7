package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kbrain/internal/model"
	"kbrain/internal/service"
)

type MockScopeService struct {
	mock.Mock
}

func (m *MockScopeService) Create(ctx context.Context, in service.CreateScopeInput) (*model.Scope, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scope), args.Error(1)
}

func (m *MockScopeService) Get(ctx context.Context, id string) (*model.Scope, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scope), args.Error(1)
}

func (m *MockScopeService) List(ctx context.Context, isActive *bool, limit, offset int) (*service.ScopeListResult, error) {
	args := m.Called(ctx, isActive, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ScopeListResult), args.Error(1)
}

func (m *MockScopeService) Update(ctx context.Context, id string, in service.UpdateScopeInput) (*model.Scope, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scope), args.Error(1)
}

func (m *MockScopeService) Statistics(ctx context.Context, id string) (*model.ScopeStatistics, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScopeStatistics), args.Error(1)
}

func (m *MockScopeService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
