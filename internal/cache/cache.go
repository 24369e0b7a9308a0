// Package cache keeps fetched payloads in object storage so they can be
// served again by identifier without another trip to the host.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/content"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/storage"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

const (
	metaFilename = "filename"
	metaFileID   = "file_id"
	healthKey    = ".health-check"
)

// Cache implements domain.FileCache on top of an ObjectStorage bucket.
//
// Objects are stored under "{id}_{filename}". The in-memory index maps an
// identifier to the key of its last completed write; identifiers missing
// from the index are looked up by key prefix, which covers files written
// by an earlier process.
type Cache struct {
	store   storage.ObjectStorage
	bucket  string
	logger  types.Logger
	metrics types.Metrics

	mu    sync.Mutex
	index map[string]domain.CachedFile
	locks map[string]*sync.Mutex
}

// New creates a cache over bucket in store
func New(store storage.ObjectStorage, bucket string, logger types.Logger, metrics types.Metrics) *Cache {
	return &Cache{
		store:   store,
		bucket:  bucket,
		logger:  logger,
		metrics: metrics,
		index:   make(map[string]domain.CachedFile),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Init creates the bucket if needed
func (c *Cache) Init(ctx context.Context) error {
	if err := c.store.CreateBucket(ctx, c.bucket); err != nil {
		return fmt.Errorf("failed to create cache bucket %s: %w", c.bucket, err)
	}
	return nil
}

// Key returns the object key for a file
func Key(fileID, filename string) string {
	return fileID + "_" + content.SafeFilename(filename)
}

// Store writes result and points the index at it. Writes for the same
// identifier are serialised. When the identifier was indexed under another
// key, that object is deleted once the new write has landed.
func (c *Cache) Store(ctx context.Context, result *domain.FetchResult) (*domain.CachedFile, error) {
	if result == nil || result.FileID == "" {
		return nil, errors.New("cache: result without file id")
	}

	lock := c.lockFor(result.FileID)
	lock.Lock()
	defer lock.Unlock()

	filename := result.Filename
	if filename == "" {
		filename = content.DefaultFilename
	}
	key := Key(result.FileID, filename)

	err := c.store.Put(ctx, c.bucket, key, bytes.NewReader(result.Content), storage.Attributes{
		ContentType: result.ContentType,
		Tags: map[string]string{
			metaFilename: filename,
			metaFileID:   result.FileID,
		},
	})
	if err != nil {
		c.metrics.RecordError("cache_store", "put_failed")
		return nil, fmt.Errorf("failed to store %s: %w", key, err)
	}

	cached := domain.CachedFile{
		FileID:      result.FileID,
		Filename:    filename,
		Key:         key,
		ContentType: result.ContentType,
		Size:        int64(len(result.Content)),
		StoredAt:    time.Now().UTC(),
	}

	c.mu.Lock()
	previous, indexed := c.index[result.FileID]
	c.index[result.FileID] = cached
	c.mu.Unlock()

	if indexed && previous.Key != key {
		c.evict(ctx, previous)
	}

	c.metrics.RecordSuccess("cache_store")
	c.logger.Debug(ctx, "Stored file in cache", types.Fields{
		"file_id": result.FileID,
		"key":     key,
		"size":    cached.Size,
	})

	return &cached, nil
}

// Open returns the stored payload for fileID, or domain.ErrNotFound.
// The caller closes Body.
func (c *Cache) Open(ctx context.Context, fileID string) (*domain.OpenedFile, error) {
	c.mu.Lock()
	entry, ok := c.index[fileID]
	c.mu.Unlock()

	if ok {
		opened, err := c.open(ctx, fileID, entry.Key)
		if err == nil {
			c.metrics.RecordSuccess("cache_hit")
			return opened, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		// The object is gone from storage
		c.mu.Lock()
		if c.index[fileID].Key == entry.Key {
			delete(c.index, fileID)
		}
		c.mu.Unlock()
	}

	opened, err := c.scan(ctx, fileID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.metrics.RecordError("cache_lookup", "not_found")
		}
		return nil, err
	}

	c.mu.Lock()
	if _, exists := c.index[fileID]; !exists {
		c.index[fileID] = opened.CachedFile
	}
	c.mu.Unlock()

	c.metrics.RecordSuccess("cache_hit")
	return opened, nil
}

// Ping checks that the backing storage answers
func (c *Cache) Ping(ctx context.Context) error {
	if _, err := c.store.Exists(ctx, c.bucket, healthKey); err != nil {
		return fmt.Errorf("cache storage unavailable: %w", err)
	}
	return nil
}

// scan looks for "{id}_" objects, newest first. Keys of another identifier
// sharing the prefix (ids may contain '_') are skipped when the object
// records its owner.
func (c *Cache) scan(ctx context.Context, fileID string) (*domain.OpenedFile, error) {
	objects, err := c.store.List(ctx, c.bucket, fileID+"_")
	if err != nil {
		return nil, fmt.Errorf("failed to list cached files: %w", err)
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	for _, obj := range objects {
		opened, err := c.open(ctx, fileID, obj.Key)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return opened, nil
	}

	return nil, domain.ErrNotFound
}

func (c *Cache) open(ctx context.Context, fileID, key string) (*domain.OpenedFile, error) {
	obj, err := c.store.Open(ctx, c.bucket, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}

	if owner := obj.Tags[metaFileID]; owner != "" && owner != fileID {
		obj.Close()
		return nil, domain.ErrNotFound
	}

	filename := obj.Tags[metaFilename]
	if filename == "" {
		filename = strings.TrimPrefix(key, fileID+"_")
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = content.OctetStream
	}

	return &domain.OpenedFile{
		CachedFile: domain.CachedFile{
			FileID:      fileID,
			Filename:    filename,
			Key:         key,
			ContentType: contentType,
			Size:        obj.Size,
			StoredAt:    obj.LastModified,
		},
		Body: obj,
	}, nil
}

// evict removes a superseded object. A failure leaves a stale object that
// Open never reaches through the index, so it is only logged.
func (c *Cache) evict(ctx context.Context, stale domain.CachedFile) {
	if err := c.store.Delete(ctx, c.bucket, stale.Key); err != nil {
		c.metrics.RecordError("cache_evict", "delete_failed")
		c.logger.Warn(ctx, "Failed to delete superseded cache object", types.Fields{
			"file_id": stale.FileID,
			"key":     stale.Key,
			"error":   err.Error(),
		})
		return
	}
	c.metrics.RecordSuccess("cache_evict")
}

func (c *Cache) lockFor(fileID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.locks[fileID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[fileID] = l
	}
	return l
}
