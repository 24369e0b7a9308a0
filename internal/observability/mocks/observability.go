// Package mocks holds testify mocks of the observability contracts. The
// NewNop constructors accept every call, for tests that do not look at
// logs or metrics.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

var (
	_ types.Logger   = (*MockLogger)(nil)
	_ types.Metrics  = (*MockMetrics)(nil)
	_ types.Provider = (*MockProvider)(nil)
)

type MockLogger struct {
	mock.Mock
}

func NewNopLogger() *MockLogger {
	m := &MockLogger{}
	for _, level := range []string{"Info", "Warn", "Debug"} {
		m.On(level, mock.Anything, mock.Anything, mock.Anything).Maybe()
	}
	m.On("Error", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("WithFields", mock.Anything).Return(m).Maybe()
	return m
}

func (m *MockLogger) Info(ctx context.Context, msg string, fields types.Fields) {
	m.Called(ctx, msg, fields)
}

func (m *MockLogger) Warn(ctx context.Context, msg string, fields types.Fields) {
	m.Called(ctx, msg, fields)
}

func (m *MockLogger) Debug(ctx context.Context, msg string, fields types.Fields) {
	m.Called(ctx, msg, fields)
}

func (m *MockLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {
	m.Called(ctx, msg, err, fields)
}

// WithFields returns the configured logger, or the mock itself when the
// expectation returns nothing.
func (m *MockLogger) WithFields(fields types.Fields) types.Logger {
	if l, ok := m.Called(fields).Get(0).(types.Logger); ok {
		return l
	}
	return m
}

type MockMetrics struct {
	mock.Mock
}

func NewNopMetrics() *MockMetrics {
	m := &MockMetrics{}
	for _, single := range []string{"RecordSuccess", "StartOperation", "EndOperation"} {
		m.On(single, mock.Anything).Maybe()
	}
	for _, pair := range []string{"RecordError", "RecordDuration", "RecordFileSize"} {
		m.On(pair, mock.Anything, mock.Anything).Maybe()
	}
	return m
}

func (m *MockMetrics) RecordSuccess(op string)               { m.Called(op) }
func (m *MockMetrics) RecordError(op, errorType string)      { m.Called(op, errorType) }
func (m *MockMetrics) RecordDuration(op string, sec float64) { m.Called(op, sec) }
func (m *MockMetrics) RecordFileSize(kind string, n int64)   { m.Called(kind, n) }
func (m *MockMetrics) StartOperation(op string)              { m.Called(op) }
func (m *MockMetrics) EndOperation(op string)                { m.Called(op) }

type MockProvider struct {
	mock.Mock
}

// NewNopProvider hands every component the same nop logger and metrics.
func NewNopProvider() *MockProvider {
	m := &MockProvider{}
	m.On("Logger", mock.Anything).Return(NewNopLogger()).Maybe()
	m.On("Metrics", mock.Anything).Return(NewNopMetrics()).Maybe()
	m.On("Close").Return(nil).Maybe()
	return m
}

func (m *MockProvider) Logger(component string) types.Logger {
	l, _ := m.Called(component).Get(0).(types.Logger)
	return l
}

func (m *MockProvider) Metrics(component string) types.Metrics {
	mt, _ := m.Called(component).Get(0).(types.Metrics)
	return mt
}

func (m *MockProvider) Close() error {
	return m.Called().Error(0)
}
