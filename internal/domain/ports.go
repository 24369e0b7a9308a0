package domain

import (
	"context"
	"net/http"
)

// HTTPSession issues GETs that share one cookie jar.
type HTTPSession interface {
	Get(ctx context.Context, rawURL string) (*http.Response, error)
}

// HTTPClient hands out a fresh session per fetch.
type HTTPClient interface {
	NewSession() (HTTPSession, error)
}

// FileFetcher retrieves a file from the shared-file host by identifier.
// Failures are *FetchError.
type FileFetcher interface {
	Fetch(ctx context.Context, fileID string) (*FetchResult, error)
}

// FileCache associates identifiers with previously fetched payloads.
type FileCache interface {
	Store(ctx context.Context, result *FetchResult) (*CachedFile, error)
	Open(ctx context.Context, fileID string) (*OpenedFile, error)
	Ping(ctx context.Context) error
}
