package handler

import (
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/config"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

// Platform names
const (
	PlatformHTTP   = "http"
	PlatformLambda = "lambda"
)

// Factory creates handlers with the default middleware stack.
type Factory struct {
	worker     Worker
	provider   types.Provider
	handlerCfg config.HandlerConfig
}

// NewFactory creates a factory for worker using the default handler config.
func NewFactory(worker Worker, provider types.Provider) *Factory {
	return &Factory{
		worker:     worker,
		provider:   provider,
		handlerCfg: config.DefaultHandlerConfig(),
	}
}

// WithHandlerConfig sets custom handler configuration.
func (f *Factory) WithHandlerConfig(cfg config.HandlerConfig) *Factory {
	f.handlerCfg = cfg
	return f
}

// Create creates a handler, detecting the platform when it is unset.
func (f *Factory) Create() *Handler {
	cfg := f.handlerCfg
	if cfg.Platform == "" || cfg.Platform == "auto" {
		cfg.Platform = DetectPlatform()
	}

	h := NewHandler(f.worker, &cfg)
	f.applyDefaultMiddleware(h)
	return h
}

// applyDefaultMiddleware adds the standard middleware stack, outermost first.
func (f *Factory) applyDefaultMiddleware(h *Handler) {
	h.Use(RecoveryMiddleware(f.provider))

	if f.handlerCfg.Timeout > 0 {
		h.Use(TimeoutMiddleware(f.handlerCfg.Timeout))
	}

	if f.handlerCfg.EnableTracing {
		h.Use(TracingMiddleware())
	}

	if f.handlerCfg.EnableMetrics {
		h.Use(MetricsMiddleware(f.provider))
	}

	h.Use(LoggingMiddleware(f.provider))
	h.Use(ValidationMiddleware())
}

// DetectPlatform reports "lambda" inside the Lambda runtime and "http"
// everywhere else.
func DetectPlatform() string {
	if config.IsLambda() {
		return PlatformLambda
	}
	return PlatformHTTP
}
