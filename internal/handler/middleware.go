package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

// traceHeaders are the metadata keys a caller may use to hand us a trace id,
// in order of preference.
var traceHeaders = []string{"trace_id", "x-trace-id", "x-b3-traceid", "x-request-id", "correlation-id"}

// outcome classifies a finished request as "success", or as the error code
// to report for it.
func outcome(resp Response, err error) (ok bool, code string) {
	switch {
	case err != nil:
		return false, "processing_error"
	case resp.Success:
		return true, ""
	case resp.Error != nil && resp.Error.Code != "":
		return false, resp.Error.Code
	default:
		return false, "unknown_error"
	}
}

func workerFrom(ctx context.Context) string {
	if name, _ := ctx.Value(types.WorkerKey).(string); name != "" {
		return name
	}
	return "unknown"
}

// LoggingMiddleware writes one entry when a request starts and one when it
// ends. Failed responses log at warn, returned errors at error.
func LoggingMiddleware(provider types.Provider) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			platform, _ := ctx.Value(types.PlatformKey).(string)
			log := provider.Logger("handler").WithFields(types.Fields{
				"type":     req.Type,
				"source":   req.Source,
				"worker":   workerFrom(ctx),
				"platform": platform,
			})
			log.Debug(ctx, "Request received", types.Fields{"payload_size": len(req.Payload)})

			start := time.Now()
			resp, err := next(ctx, req)
			resp.Duration = time.Since(start)

			fields := types.Fields{"duration_ms": resp.Duration.Milliseconds()}
			ok, code := outcome(resp, err)
			switch {
			case err != nil:
				log.Error(ctx, "Request failed", err, fields)
			case !ok:
				fields["error_code"] = code
				if resp.Error != nil {
					fields["error_msg"] = resp.Error.Message
				}
				log.Warn(ctx, "Request rejected", fields)
			default:
				log.Info(ctx, "Request served", fields)
			}
			return resp, err
		}
	}
}

// MetricsMiddleware records per-worker counts, durations and in-flight requests
func MetricsMiddleware(provider types.Provider) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			metrics := provider.Metrics("handler")
			worker := workerFrom(ctx)

			metrics.StartOperation(worker)
			defer metrics.EndOperation(worker)

			start := time.Now()
			resp, err := next(ctx, req)
			metrics.RecordDuration(worker, time.Since(start).Seconds())

			if ok, code := outcome(resp, err); ok {
				metrics.RecordSuccess(worker)
			} else {
				metrics.RecordError(worker, code)
			}
			return resp, err
		}
	}
}

// RecoveryMiddleware turns a panic into an INTERNAL_ERROR response.
// It must be the outermost middleware.
func RecoveryMiddleware(provider types.Provider) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (resp Response, err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				err = fmt.Errorf("panic recovered: %v", r)
				provider.Logger("handler").Error(ctx, "Worker panicked", err, types.Fields{
					"worker": workerFrom(ctx),
					"stack":  string(debug.Stack()),
				})
				provider.Metrics("handler").RecordError("panic", "panic_recovered")

				// the panic value stays in the logs
				resp = NewErrorResponse(req.ID, CodeInternal, "An internal error occurred", "")
			}()

			return next(ctx, req)
		}
	}
}

// TracingMiddleware puts a trace id and a fresh span id on the context, the
// request metadata and the response metadata. A trace id sent by the caller
// is kept.
func TracingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			traceID := extractTraceID(req)
			if traceID == "" {
				traceID = uuid.NewString()
			}
			spanID := uuid.NewString()

			ctx = context.WithValue(ctx, types.TraceIDKey, traceID)
			ctx = context.WithValue(ctx, types.SpanIDKey, spanID)
			req.SetMetadata("trace_id", traceID)
			req.SetMetadata("span_id", spanID)

			resp, err := next(ctx, req)

			resp.SetMetadata("trace_id", traceID)
			resp.SetMetadata("span_id", spanID)
			return resp, err
		}
	}
}

// TimeoutMiddleware bounds request processing. On expiry it answers TIMEOUT
// and closes whatever the worker returns afterwards.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	type result struct {
		resp Response
		err  error
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan result, 1)
			go func() {
				resp, err := next(ctx, req)
				done <- result{resp, err}
			}()

			select {
			case res := <-done:
				return res.resp, res.err
			case <-ctx.Done():
			}

			go func() {
				late := <-done
				_ = late.resp.Close()
			}()

			return NewErrorResponse(req.ID, CodeTimeout, "Request processing timed out",
				fmt.Sprintf("no response within %v", timeout)), ctx.Err()
		}
	}
}

// ValidationMiddleware fills in the id and timestamp and rejects requests
// without a type or with a body that is not JSON. GET routes carry no body.
func ValidationMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			if req.ID == "" {
				req.ID = uuid.NewString()
			}
			now := time.Now().UTC()
			if req.Timestamp.IsZero() {
				req.Timestamp = now
			}

			if req.Type == "" {
				return NewErrorResponse(req.ID, CodeValidation, "Request type is required", ""), nil
			}
			if len(req.Payload) > 0 && !json.Valid(req.Payload) {
				return NewErrorResponse(req.ID, CodeInvalidRequest, "Invalid JSON payload", "body must be a JSON document"), nil
			}

			req.SetMetadata("validated_at", now.Format(time.RFC3339))
			return next(ctx, req)
		}
	}
}

func extractTraceID(req Request) string {
	for _, key := range traceHeaders {
		if v := req.GetMetadata(key); v != "" {
			return v
		}
	}
	return ""
}
