package handler_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/config"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler/mocks"
	obmocks "github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/mocks"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

func newRequest(payload string) handler.Request {
	return handler.Request{
		ID:      "req-1",
		Type:    "download",
		Payload: []byte(payload),
	}
}

func TestHandler_MiddlewareOrder(t *testing.T) {
	worker := mocks.NewMockWorker("download")
	worker.ExpectProcessAny(handler.Response{Success: true}, nil)

	cfg := config.DefaultHandlerConfig()
	h := handler.NewHandler(worker, &cfg)

	var order []string
	record := func(name string) handler.Middleware {
		return func(next handler.HandlerFunc) handler.HandlerFunc {
			return func(ctx context.Context, req handler.Request) (handler.Response, error) {
				order = append(order, name+":in")
				resp, err := next(ctx, req)
				order = append(order, name+":out")
				return resp, err
			}
		}
	}
	h.Use(record("outer"))
	h.Use(record("inner"))

	_, err := h.Handle(context.Background(), newRequest(`{}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"outer:in", "inner:in", "inner:out", "outer:out"}, order)
}

func TestHandler_ContextValues(t *testing.T) {
	worker := mocks.NewMockWorker("get-file")
	worker.On("Process", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Value(types.WorkerKey) == "get-file" &&
			ctx.Value(types.RequestIDKey) == "req-1" &&
			ctx.Value(types.PlatformKey) == "http"
	}), mock.Anything).Return(handler.Response{Success: true}, nil)

	cfg := config.HandlerConfig{Platform: "http"}
	h := handler.NewHandler(worker, &cfg)

	resp, err := h.Handle(context.Background(), newRequest(""))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	worker.AssertExpectations(t)
}

func TestRecoveryMiddleware(t *testing.T) {
	mw := handler.RecoveryMiddleware(obmocks.NewNopProvider())
	chain := mw(func(ctx context.Context, req handler.Request) (handler.Response, error) {
		panic("boom")
	})

	resp, err := chain(context.Background(), newRequest(`{}`))
	require.Error(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, handler.CodeInternal, resp.Error.Code)
	assert.Equal(t, "An internal error occurred", resp.Error.Message)
	assert.NotContains(t, resp.Error.Message, "boom")
}

type closeRecorder struct {
	io.Reader
	closed atomic.Bool
}

func (c *closeRecorder) Close() error {
	c.closed.Store(true)
	return nil
}

func TestTimeoutMiddleware(t *testing.T) {
	t.Run("completes in time", func(t *testing.T) {
		chain := handler.TimeoutMiddleware(time.Second)(func(ctx context.Context, req handler.Request) (handler.Response, error) {
			return handler.Response{ID: req.ID, Success: true}, nil
		})

		resp, err := chain(context.Background(), newRequest(`{}`))
		require.NoError(t, err)
		assert.True(t, resp.Success)
	})

	t.Run("times out and releases late attachment", func(t *testing.T) {
		body := &closeRecorder{Reader: strings.NewReader("late")}
		release := make(chan struct{})

		chain := handler.TimeoutMiddleware(20 * time.Millisecond)(func(ctx context.Context, req handler.Request) (handler.Response, error) {
			<-release
			return handler.NewAttachmentResponse(req.ID, &handler.Attachment{Body: body}), nil
		})

		resp, err := chain(context.Background(), newRequest(`{}`))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.Equal(t, handler.CodeTimeout, resp.Error.Code)

		close(release)
		assert.Eventually(t, body.closed.Load, time.Second, 5*time.Millisecond)
	})
}

func TestTracingMiddleware(t *testing.T) {
	var seen string
	chain := handler.TracingMiddleware()(func(ctx context.Context, req handler.Request) (handler.Response, error) {
		seen, _ = ctx.Value(types.TraceIDKey).(string)
		return handler.Response{Success: true}, nil
	})

	t.Run("uses caller trace id", func(t *testing.T) {
		req := newRequest(`{}`)
		req.SetMetadata("x-request-id", "abc-123")

		resp, err := chain(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", resp.Metadata["trace_id"])
		assert.NotEmpty(t, resp.Metadata["span_id"])
	})

	t.Run("generates trace id", func(t *testing.T) {
		resp, err := chain(context.Background(), newRequest(`{}`))
		require.NoError(t, err)
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, resp.Metadata["trace_id"])
	})
}

func TestValidationMiddleware(t *testing.T) {
	var called bool
	chain := handler.ValidationMiddleware()(func(ctx context.Context, req handler.Request) (handler.Response, error) {
		called = true
		assert.NotEmpty(t, req.ID)
		assert.NotEmpty(t, req.Metadata["validated_at"])
		return handler.Response{Success: true}, nil
	})

	tests := []struct {
		name     string
		req      handler.Request
		wantCode string
	}{
		{"valid json", handler.Request{Type: "download", Payload: []byte(`{"url":"x"}`)}, ""},
		{"empty body allowed", handler.Request{Type: "get-file"}, ""},
		{"missing type", handler.Request{Payload: []byte(`{}`)}, handler.CodeValidation},
		{"invalid json", handler.Request{Type: "download", Payload: []byte(`{url`)}, handler.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			resp, err := chain(context.Background(), tt.req)
			require.NoError(t, err)

			if tt.wantCode == "" {
				assert.True(t, called)
				assert.True(t, resp.Success)
				return
			}
			assert.False(t, called)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := &obmocks.MockMetrics{}
	metrics.On("StartOperation", "download").Return().Once()
	metrics.On("EndOperation", "download").Return().Once()
	metrics.On("RecordDuration", "download", mock.AnythingOfType("float64")).Return().Once()
	metrics.On("RecordError", "download", handler.CodeInvalidLink).Return().Once()

	provider := &obmocks.MockProvider{}
	provider.On("Metrics", "handler").Return(metrics)

	chain := handler.MetricsMiddleware(provider)(func(ctx context.Context, req handler.Request) (handler.Response, error) {
		return handler.NewErrorResponse(req.ID, handler.CodeInvalidLink, "Invalid Google Drive URL", ""), nil
	})

	ctx := context.WithValue(context.Background(), types.WorkerKey, "download")
	_, err := chain(ctx, newRequest(`{}`))
	require.NoError(t, err)

	metrics.AssertExpectations(t)
}

func TestLoggingMiddleware_SetsDuration(t *testing.T) {
	chain := handler.LoggingMiddleware(obmocks.NewNopProvider())(func(ctx context.Context, req handler.Request) (handler.Response, error) {
		time.Sleep(2 * time.Millisecond)
		return handler.Response{Success: false}, nil
	})

	resp, err := chain(context.Background(), newRequest(`{}`))
	require.NoError(t, err)
	assert.Greater(t, resp.Duration, time.Duration(0))
}

func TestFactory_Create(t *testing.T) {
	worker := mocks.NewMockWorker("download")
	worker.On("Process", mock.Anything, mock.Anything).Return(handler.Response{}, nil).Run(func(args mock.Arguments) {
		panic("worker exploded")
	})

	h := handler.NewFactory(worker, obmocks.NewNopProvider()).
		WithHandlerConfig(config.HandlerConfig{Platform: "http", EnableTracing: true, EnableMetrics: true}).
		Create()

	resp, err := h.Handle(context.Background(), newRequest(`{}`))
	require.Error(t, err)
	assert.Equal(t, handler.CodeInternal, resp.Error.Code)
	assert.Equal(t, "http", h.Config().Platform)
}

func TestDetectPlatform(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
	t.Setenv("AWS_LAMBDA_RUNTIME_API", "")
	assert.Equal(t, handler.PlatformHTTP, handler.DetectPlatform())

	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "drive-fetch")
	assert.Equal(t, handler.PlatformLambda, handler.DetectPlatform())
}

func TestGracefulShutdown(t *testing.T) {
	var stopped bool
	err := handler.GracefulShutdown(obmocks.NewNopLogger(), obmocks.NewNopMetrics(), time.Now(), func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		stopped = hasDeadline
		return nil
	})
	require.NoError(t, err)
	assert.True(t, stopped)

	err = handler.GracefulShutdown(obmocks.NewNopLogger(), obmocks.NewNopMetrics(), time.Now(), func(ctx context.Context) error {
		return errors.New("busy")
	})
	assert.EqualError(t, err, "busy")
}
