package handler

import (
	"context"
	"time"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/config"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

// Handler wraps a Worker with the middleware chain. Platform adapters
// turn their native events into Requests and call Handle.
type Handler struct {
	worker      Worker
	middlewares []Middleware
	config      *config.HandlerConfig
}

// Middleware wraps a HandlerFunc to add a cross-cutting concern.
type Middleware func(next HandlerFunc) HandlerFunc

// HandlerFunc processes one request.
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

// NewHandler creates a handler without middleware. Use Factory for the
// default stack.
func NewHandler(worker Worker, cfg *config.HandlerConfig) *Handler {
	return &Handler{
		worker: worker,
		config: cfg,
	}
}

// Use appends middleware. The first middleware added is the outermost.
func (h *Handler) Use(middleware Middleware) {
	h.middlewares = append(h.middlewares, middleware)
}

// Handle runs req through the middleware chain and the worker. The request
// id, worker name and platform are on the context the chain sees.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	ctx = context.WithValue(ctx, types.RequestIDKey, req.ID)
	ctx = context.WithValue(ctx, types.WorkerKey, h.worker.Name())
	ctx = context.WithValue(ctx, types.PlatformKey, h.config.Platform)

	return chain(h.worker.Process, h.middlewares)(ctx, req)
}

// chain wraps fn so that mws[0] runs first.
func chain(fn HandlerFunc, mws []Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		fn = mws[i](fn)
	}
	return fn
}

func (h *Handler) Health(ctx context.Context) error {
	return h.worker.Health(ctx)
}

func (h *Handler) Config() *config.HandlerConfig {
	return h.config
}

func (h *Handler) Worker() Worker {
	return h.worker
}

// shutdownTimeout bounds how long in-flight requests get to finish.
const shutdownTimeout = 30 * time.Second

// GracefulShutdown calls stop with a deadline of shutdownTimeout and logs
// the uptime of the process.
func GracefulShutdown(logger types.Logger, metrics types.Metrics, startTime time.Time, stop func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	uptime := time.Since(startTime).Seconds()
	logger.Info(ctx, "Shutting down", types.Fields{"uptime_seconds": uptime})
	metrics.RecordSuccess("shutdown_initiated")

	if err := stop(ctx); err != nil {
		logger.Error(ctx, "Shutdown failed", err, nil)
		metrics.RecordError("shutdown", "stop_failed")
		return err
	}

	metrics.RecordDuration("service_uptime", uptime)
	metrics.RecordSuccess("shutdown_complete")
	logger.Info(ctx, "Shutdown complete", nil)
	return nil
}
