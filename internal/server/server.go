// Package server mounts the worker handlers on a chi router and runs the
// HTTP listener.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/config"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler/platforms"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/usecase"
)

// Handlers are the route handlers, one per worker
type Handlers struct {
	Status   *handler.Handler
	Download *handler.Handler
	Batch    *handler.Handler
	File     *handler.Handler
}

// Server serves Handlers over HTTP
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     types.Logger
}

// New builds the router. gatherer backs /metrics; nil means the default
// Prometheus registry.
func New(cfg *config.Config, handlers Handlers, gatherer prometheus.Gatherer, logger types.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{logger: logger}
	s.router = s.routes(handlers, gatherer)
	s.httpServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(h Handlers, gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.CleanPath)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:         300,
	}))

	status := platforms.NewHTTPAdapter(h.Status, s.logger)
	for _, path := range []string{"/", "/health", "/healthz", "/livez"} {
		r.Method(http.MethodGet, path, status)
	}
	r.Get("/ready", status.ServeHealth)
	r.Get("/readyz", status.ServeHealth)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/download-drive-file", platforms.NewHTTPAdapter(h.Download, s.logger))
		r.Method(http.MethodPost, "/download-multiple", platforms.NewHTTPAdapter(h.Batch, s.logger))
		r.Method(http.MethodGet, "/get-file/{"+usecase.FileParam+"}", platforms.NewHTTPAdapter(h.File, s.logger))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		platforms.WriteError(w, http.StatusNotFound, handler.CodeNotFound, "Endpoint not found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		platforms.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", "")
	})

	return r
}

// Router returns the root handler, shared with the Lambda adapter
func (s *Server) Router() http.Handler {
	return s.router
}

// Start listens until Stop is called. It returns nil after a clean stop.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "HTTP server listening", types.Fields{"addr": s.httpServer.Addr})

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests until ctx expires
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
