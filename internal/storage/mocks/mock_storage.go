package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Save(ctx context.Context, path string, content []byte, overwrite bool) (bool, error) {
	args := m.Called(ctx, path, content, overwrite)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileStorage) Read(ctx context.Context, path string) ([]byte, bool, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockFileStorage) Exists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileStorage) List(ctx context.Context, path string, recursive bool) ([]string, error) {
	args := m.Called(ctx, path, recursive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFileStorage) Delete(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileStorage) Size(ctx context.Context, path string) (int64, bool, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockFileStorage) CreateDirectory(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileStorage) Copy(ctx context.Context, src, dst string) (bool, error) {
	args := m.Called(ctx, src, dst)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileStorage) Move(ctx context.Context, src, dst string) (bool, error) {
	args := m.Called(ctx, src, dst)
	return args.Bool(0), args.Error(1)
}
