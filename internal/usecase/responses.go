package usecase

import (
	"context"
	"errors"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

// Messages returned for malformed input
const (
	MsgNoURL        = "No URL provided"
	MsgNoURLs       = "No URLs provided"
	MsgInvalidLink  = "Invalid Google Drive URL"
	MsgFileNotFound = "File not found"
	MsgInternal     = "An internal error occurred"
)

func parseError(ctx context.Context, req handler.Request, logger types.Logger, err error) handler.Response {
	logger.Warn(ctx, "Failed to parse request payload", types.Fields{"error": err.Error()})
	return handler.NewErrorResponse(req.ID, handler.CodeInvalidRequest, "Invalid request body", err.Error())
}

func validationError(req handler.Request, message string) handler.Response {
	return handler.NewErrorResponse(req.ID, handler.CodeValidation, message, "")
}

func invalidLink(req handler.Request) handler.Response {
	return handler.NewErrorResponse(req.ID, handler.CodeInvalidLink, MsgInvalidLink, "")
}

// fetchFailure maps a fetcher error to a response. Fetch errors carry the
// text shown to the caller; anything else is internal.
func fetchFailure(req handler.Request, err error) handler.Response {
	if fe, ok := domain.AsFetchError(err); ok {
		return handler.NewErrorResponse(req.ID, handler.CodeDownloadFailed, fe.Message, string(fe.Kind))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return handler.NewErrorResponse(req.ID, handler.CodeTimeout, "Request processing timed out", "")
	}
	return handler.NewErrorResponse(req.ID, handler.CodeInternal, MsgInternal, "")
}

// failureMessage is the per-link error text of a batch
func failureMessage(err error) string {
	if fe, ok := domain.AsFetchError(err); ok {
		return fe.Message
	}
	return err.Error()
}
