package usecase

import (
	"context"
	"errors"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/fileid"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

// FileParam is the path parameter holding the file identifier
const FileParam = "fileID"

// FileWorker serves a previously cached file
type FileWorker struct {
	cache   domain.FileCache
	logger  types.Logger
	metrics types.Metrics
}

// NewFileWorker creates the get-file worker
func NewFileWorker(cache domain.FileCache, logger types.Logger, metrics types.Metrics) *FileWorker {
	return &FileWorker{
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

func (w *FileWorker) Name() string {
	return "get-file"
}

func (w *FileWorker) Health(ctx context.Context) error {
	return w.cache.Ping(ctx)
}

func (w *FileWorker) Process(ctx context.Context, req handler.Request) (handler.Response, error) {
	id := req.Param(FileParam)
	if !fileid.Valid(id) {
		w.metrics.RecordError("get_file", "invalid_id")
		return handler.NewErrorResponse(req.ID, handler.CodeNotFound, MsgFileNotFound, ""), nil
	}

	ctx = context.WithValue(ctx, types.FileIDKey, id)

	opened, err := w.cache.Open(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		w.metrics.RecordError("get_file", "not_found")
		return handler.NewErrorResponse(req.ID, handler.CodeNotFound, MsgFileNotFound, ""), nil
	}
	if err != nil {
		w.metrics.RecordError("get_file", "cache_error")
		w.logger.Error(ctx, "Failed to open cached file", err, nil)
		return handler.NewErrorResponse(req.ID, handler.CodeInternal, MsgInternal, ""), nil
	}

	w.metrics.RecordSuccess("get_file")

	return handler.NewAttachmentResponse(req.ID, &handler.Attachment{
		Filename:    opened.Filename,
		ContentType: opened.ContentType,
		Size:        opened.Size,
		Body:        opened.Body,
	}), nil
}
