package usecase

import (
	"context"
	"fmt"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/fileid"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

// BatchWorker fetches several links one after another and keeps every
// successful payload in the cache for get-file.
type BatchWorker struct {
	fetcher domain.FileFetcher
	cache   domain.FileCache
	logger  types.Logger
	metrics types.Metrics
}

// NewBatchWorker creates the download-multiple worker
func NewBatchWorker(fetcher domain.FileFetcher, cache domain.FileCache, logger types.Logger, metrics types.Metrics) *BatchWorker {
	return &BatchWorker{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

func (w *BatchWorker) Name() string {
	return "download-multiple"
}

func (w *BatchWorker) Health(ctx context.Context) error {
	return w.cache.Ping(ctx)
}

func (w *BatchWorker) Process(ctx context.Context, req handler.Request) (handler.Response, error) {
	var body BatchRequest
	if len(req.Payload) > 0 {
		if err := req.Unmarshal(&body); err != nil {
			w.metrics.RecordError("batch", "invalid_payload")
			return parseError(ctx, req, w.logger, err), nil
		}
	}

	links := body.URLs
	if len(links) == 0 && body.Text != "" {
		links = fileid.ParseLinks(body.Text)
	}
	if len(links) == 0 {
		w.metrics.RecordError("batch", "missing_urls")
		return validationError(req, MsgNoURLs), nil
	}

	w.logger.Info(ctx, "Processing batch", types.Fields{"links": len(links)})

	results := make([]BatchItem, 0, len(links))
	succeeded := 0
	for _, link := range links {
		item := w.processLink(ctx, link)
		if item.Success {
			succeeded++
		}
		results = append(results, item)
	}

	w.logger.Info(ctx, "Batch completed", types.Fields{
		"links":     len(links),
		"succeeded": succeeded,
	})

	resp, err := handler.NewSuccessResponse(req.ID, BatchResponse{Results: results})
	if err != nil {
		return handler.Response{}, fmt.Errorf("failed to encode batch results: %w", err)
	}
	return resp, nil
}

func (w *BatchWorker) processLink(ctx context.Context, link string) BatchItem {
	id, ok := fileid.Extract(link)
	if !ok {
		w.metrics.RecordError("batch_item", "invalid_link")
		w.logger.Warn(ctx, "Could not extract file id", types.Fields{"url": link})
		return BatchItem{URL: link, Error: MsgInvalidLink}
	}

	ctx = context.WithValue(ctx, types.FileIDKey, id)

	result, err := w.fetcher.Fetch(ctx, id)
	if err != nil {
		w.metrics.RecordError("batch_item", "fetch_failed")
		return BatchItem{URL: link, Error: failureMessage(err)}
	}

	cached, err := w.cache.Store(ctx, result)
	if err != nil {
		w.metrics.RecordError("batch_item", "store_failed")
		w.logger.Error(ctx, "Failed to cache file", err, nil)
		return BatchItem{URL: link, Error: fmt.Sprintf("Failed to store file: %v", err)}
	}

	w.metrics.RecordSuccess("batch_item")
	size := cached.Size
	return BatchItem{
		URL:      link,
		Success:  true,
		Filename: cached.Filename,
		FileID:   id,
		Size:     &size,
	}
}
