// Package instrument records logs and metrics for storage adapter calls.
package instrument

import (
	"context"
	"errors"
	"time"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/storage"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

// Recorder is shared by the operations of one adapter. Backend names the
// error type reported for failures ("filesystem", "s3").
type Recorder struct {
	Backend string
	Logger  types.Logger
	Metrics types.Metrics
}

// Start begins op on bucket/key. The returned func ends it and must be
// deferred with a pointer to the operation's error:
//
//	defer r.Start(ctx, "put", bucket, key)(&err)
//
// A missing object counts as a not_found error and is not logged.
func (r Recorder) Start(ctx context.Context, op, bucket, key string) func(*error) {
	start := time.Now()
	r.Metrics.StartOperation(op)

	return func(errp *error) {
		r.Metrics.EndOperation(op)

		var err error
		if errp != nil {
			err = *errp
		}
		switch {
		case err == nil:
			r.Metrics.RecordSuccess(op)
			r.Metrics.RecordDuration(op, time.Since(start).Seconds())
		case errors.Is(err, storage.ErrObjectNotFound):
			r.Metrics.RecordError(op, "not_found")
		default:
			r.Logger.Error(ctx, "Storage operation failed", err, types.Fields{
				"operation": op,
				"bucket":    bucket,
				"key":       key,
			})
			r.Metrics.RecordError(op, r.Backend)
		}
	}
}
