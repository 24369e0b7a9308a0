// Package domain holds the types shared by the fetcher, the cache and the
// request workers.
package domain

import (
	"io"
	"time"
)

// FetchResult is a successfully fetched payload.
type FetchResult struct {
	FileID      string
	Content     []byte
	Filename    string
	ContentType string
	Size        int64
}

// CachedFile describes a payload kept by the file cache.
type CachedFile struct {
	FileID      string
	Filename    string
	Key         string
	ContentType string
	Size        int64
	StoredAt    time.Time
}

// OpenedFile is a cached payload ready to be streamed.
type OpenedFile struct {
	CachedFile
	Body io.ReadCloser
}
