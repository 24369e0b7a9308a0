package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain"
)

// MockFileFetcher is a mock implementation of domain.FileFetcher
type MockFileFetcher struct {
	mock.Mock
}

var _ domain.FileFetcher = (*MockFileFetcher)(nil)

// Fetch mocks the Fetch method
func (m *MockFileFetcher) Fetch(ctx context.Context, fileID string) (*domain.FetchResult, error) {
	args := m.Called(ctx, fileID)
	if result, ok := args.Get(0).(*domain.FetchResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}
