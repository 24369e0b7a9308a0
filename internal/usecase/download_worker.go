package usecase

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/fileid"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

// DownloadWorker fetches one shared file and returns it as an attachment
type DownloadWorker struct {
	fetcher domain.FileFetcher
	logger  types.Logger
	metrics types.Metrics
}

// NewDownloadWorker creates the download worker
func NewDownloadWorker(fetcher domain.FileFetcher, logger types.Logger, metrics types.Metrics) *DownloadWorker {
	return &DownloadWorker{
		fetcher: fetcher,
		logger:  logger,
		metrics: metrics,
	}
}

func (w *DownloadWorker) Name() string {
	return "download"
}

func (w *DownloadWorker) Health(ctx context.Context) error {
	return nil
}

func (w *DownloadWorker) Process(ctx context.Context, req handler.Request) (handler.Response, error) {
	var body DownloadRequest
	if len(req.Payload) > 0 {
		if err := req.Unmarshal(&body); err != nil {
			w.metrics.RecordError("download", "invalid_payload")
			return parseError(ctx, req, w.logger, err), nil
		}
	}

	link := strings.TrimSpace(body.URL)
	if link == "" {
		w.metrics.RecordError("download", "missing_url")
		return validationError(req, MsgNoURL), nil
	}

	id, ok := fileid.Extract(link)
	if !ok {
		w.metrics.RecordError("download", "invalid_link")
		w.logger.Warn(ctx, "Could not extract file id", types.Fields{"url": link})
		return invalidLink(req), nil
	}

	ctx = context.WithValue(ctx, types.FileIDKey, id)

	result, err := w.fetcher.Fetch(ctx, id)
	if err != nil {
		w.logger.Warn(ctx, "Download failed", types.Fields{"error": err.Error()})
		return fetchFailure(req, err), nil
	}

	w.metrics.RecordSuccess("download")

	return handler.NewAttachmentResponse(req.ID, &handler.Attachment{
		Filename:    result.Filename,
		ContentType: result.ContentType,
		Size:        result.Size,
		Body:        io.NopCloser(bytes.NewReader(result.Content)),
	}), nil
}
