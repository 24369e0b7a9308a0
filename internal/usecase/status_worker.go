package usecase

import (
	"context"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler"
)

// StatusWorker reports that the service is up
type StatusWorker struct {
	service string
	version string
	cache   domain.FileCache
}

// NewStatusWorker creates the status worker. Health also checks the cache.
func NewStatusWorker(service, version string, cache domain.FileCache) *StatusWorker {
	return &StatusWorker{service: service, version: version, cache: cache}
}

func (w *StatusWorker) Name() string {
	return "status"
}

func (w *StatusWorker) Health(ctx context.Context) error {
	if w.cache == nil {
		return nil
	}
	return w.cache.Ping(ctx)
}

func (w *StatusWorker) Process(ctx context.Context, req handler.Request) (handler.Response, error) {
	return handler.NewSuccessResponse(req.ID, StatusResponse{
		Status:  "running",
		Service: w.service,
		Version: w.version,
	})
}
