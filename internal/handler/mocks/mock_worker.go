package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler"
)

type MockWorker struct {
	mock.Mock
}

var _ handler.Worker = (*MockWorker)(nil)

// NewMockWorker returns a worker called name. Process and Health still
// need expectations.
func NewMockWorker(name string) *MockWorker {
	w := &MockWorker{}
	w.On("Name").Return(name).Maybe()
	return w
}

func (w *MockWorker) Name() string {
	return w.Called().String(0)
}

func (w *MockWorker) Process(ctx context.Context, req handler.Request) (handler.Response, error) {
	args := w.Called(ctx, req)
	return args.Get(0).(handler.Response), args.Error(1)
}

func (w *MockWorker) Health(ctx context.Context) error {
	return w.Called(ctx).Error(0)
}

// ExpectProcess answers requests routed to requestType.
func (w *MockWorker) ExpectProcess(requestType string, resp handler.Response, err error) *mock.Call {
	byType := mock.MatchedBy(func(req handler.Request) bool { return req.Type == requestType })
	return w.On("Process", mock.Anything, byType).Return(resp, err)
}

// ExpectProcessAny answers every request.
func (w *MockWorker) ExpectProcessAny(resp handler.Response, err error) *mock.Call {
	return w.On("Process", mock.Anything, mock.Anything).Return(resp, err)
}
