package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kbrain/internal/model"
	"kbrain/internal/repository"
	"kbrain/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, scopeID string, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, scopeID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, scopeID string, f repository.DocumentFilter, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, scopeID, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, id string) (*model.Document, []byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Document), args.Get(1).([]byte), args.Error(2)
}

func (m *MockDocumentService) UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, errorMessage string) (*model.Document, error) {
	args := m.Called(ctx, id, status, errorMessage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) UpdateMetadata(ctx context.Context, id string, patch map[string]any) (*model.Document, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id string, deleteStorage bool) error {
	args := m.Called(ctx, id, deleteStorage)
	return args.Error(0)
}
