// Package storage defines the blob store contract the file cache is built
// on. Adapters live under internal/infrastructure/storage.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is wrapped by Open when the key holds nothing.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage is a flat key space per bucket. An empty bucket name
// selects the adapter's configured bucket.
type ObjectStorage interface {
	// CreateBucket is idempotent.
	CreateBucket(ctx context.Context, bucket string) error

	// Put replaces the object at key. Readers see either the old or the
	// new object, never a partial one.
	Put(ctx context.Context, bucket, key string, body io.Reader, attrs Attributes) error

	Open(ctx context.Context, bucket, key string) (*Object, error)

	Exists(ctx context.Context, bucket, key string) (bool, error)

	// List returns the objects whose key starts with prefix. A bucket that
	// was never created lists as empty.
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)

	// Delete of a missing key succeeds.
	Delete(ctx context.Context, bucket, key string) error
}

// Attributes travel with the object bytes.
type Attributes struct {
	ContentType string            `json:"content_type,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Object is an opened object. The caller closes it.
type Object struct {
	io.ReadCloser
	ObjectInfo
	Attributes
}
