package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain"
)

// MockFileCache is a mock implementation of domain.FileCache
type MockFileCache struct {
	mock.Mock
}

var _ domain.FileCache = (*MockFileCache)(nil)

// Store mocks the Store method
func (m *MockFileCache) Store(ctx context.Context, result *domain.FetchResult) (*domain.CachedFile, error) {
	args := m.Called(ctx, result)
	if cached, ok := args.Get(0).(*domain.CachedFile); ok {
		return cached, args.Error(1)
	}
	return nil, args.Error(1)
}

// Open mocks the Open method
func (m *MockFileCache) Open(ctx context.Context, fileID string) (*domain.OpenedFile, error) {
	args := m.Called(ctx, fileID)
	if opened, ok := args.Get(0).(*domain.OpenedFile); ok {
		return opened, args.Error(1)
	}
	return nil, args.Error(1)
}

// Ping mocks the Ping method
func (m *MockFileCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
