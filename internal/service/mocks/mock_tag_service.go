package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kbrain/internal/model"
	"kbrain/internal/service"
)

type MockTagService struct {
	mock.Mock
}

func (m *MockTagService) Create(ctx context.Context, scopeID string, in service.CreateTagInput) (*model.Tag, error) {
	args := m.Called(ctx, scopeID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTagService) Get(ctx context.Context, scopeID, id string) (*model.Tag, error) {
	args := m.Called(ctx, scopeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTagService) List(ctx context.Context, scopeID string) ([]model.Tag, error) {
	args := m.Called(ctx, scopeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockTagService) Update(ctx context.Context, scopeID, id string, in service.UpdateTagInput) (*model.Tag, error) {
	args := m.Called(ctx, scopeID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTagService) Delete(ctx context.Context, scopeID, id string) error {
	args := m.Called(ctx, scopeID, id)
	return args.Error(0)
}
