package handler

import (
	"context"
)

// Worker is the platform-agnostic business logic behind one route.
// Workers never see HTTP or Lambda types.
type Worker interface {
	// Name identifies the worker in logs, metrics and request types.
	Name() string

	// Process handles one request. Expected failures are reported in the
	// Response with a nil error; a non-nil error means the request could not
	// be processed at all.
	Process(ctx context.Context, request Request) (Response, error)

	// Health reports whether the worker's dependencies are reachable.
	Health(ctx context.Context) error
}
