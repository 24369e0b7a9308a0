// Package fs stores cache objects as plain files under one base directory.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/storage"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/infrastructure/storage/instrument"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

const (
	attrsSuffix = ".attrs.json"
	tempPrefix  = ".tmp-"
)

// Storage keeps {base}/{bucket}/{key} files, each with an attributes
// sidecar next to it. Writes go to a temp file that is renamed into place.
type Storage struct {
	base string
	rec  instrument.Recorder
}

var _ storage.ObjectStorage = (*Storage)(nil)

func NewStorage(base string, logger types.Logger, metrics types.Metrics) (*Storage, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", base, err)
	}

	logger.Info(context.Background(), "Filesystem storage ready", types.Fields{"base_path": base})
	return &Storage{
		base: base,
		rec: instrument.Recorder{
			Backend: "filesystem",
			Logger:  logger.WithFields(types.Fields{"storage": "filesystem"}),
			Metrics: metrics,
		},
	}, nil
}

func (s *Storage) CreateBucket(ctx context.Context, bucket string) (err error) {
	defer s.rec.Start(ctx, "create_bucket", bucket, "")(&err)

	if err := os.MkdirAll(filepath.Join(s.base, bucket), 0o755); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func (s *Storage) Put(ctx context.Context, bucket, key string, body io.Reader, attrs storage.Attributes) (err error) {
	defer s.rec.Start(ctx, "put", bucket, key)(&err)

	path, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	sidecar, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path+attrsSuffix, sidecar, 0o644); err != nil {
		return fmt.Errorf("failed to write attributes: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", key, err)
	}

	s.rec.Metrics.RecordFileSize(attrs.ContentType, n)
	return nil
}

// Open returns the file with its size and mtime. Files without a sidecar
// open with empty attributes.
func (s *Storage) Open(ctx context.Context, bucket, key string) (obj *storage.Object, err error) {
	defer s.rec.Start(ctx, "get", bucket, key)(&err)

	path, err := s.path(bucket, key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", storage.ErrObjectNotFound, bucket, key)
	}
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	var attrs storage.Attributes
	if raw, err := os.ReadFile(path + attrsSuffix); err == nil {
		if err := json.Unmarshal(raw, &attrs); err != nil {
			f.Close()
			return nil, fmt.Errorf("corrupt attributes for %s: %w", key, err)
		}
	}

	return &storage.Object{
		ReadCloser: f,
		ObjectInfo: storage.ObjectInfo{Key: key, Size: info.Size(), LastModified: info.ModTime()},
		Attributes: attrs,
	}, nil
}

func (s *Storage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	path, err := s.path(bucket, key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// List walks the bucket directory in lexical order, skipping sidecars and
// unfinished writes.
func (s *Storage) List(ctx context.Context, bucket, prefix string) (objects []storage.ObjectInfo, err error) {
	defer s.rec.Start(ctx, "list", bucket, prefix)(&err)

	root := filepath.Join(s.base, bucket)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil || d.IsDir() {
			return err
		}
		if name := d.Name(); strings.HasSuffix(name, attrsSuffix) || strings.HasPrefix(name, tempPrefix) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil // removed while walking
		}
		objects = append(objects, storage.ObjectInfo{Key: key, Size: info.Size(), LastModified: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", bucket, err)
	}
	return objects, nil
}

func (s *Storage) Delete(ctx context.Context, bucket, key string) (err error) {
	defer s.rec.Start(ctx, "delete", bucket, key)(&err)

	path, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	_ = os.Remove(path + attrsSuffix)
	return nil
}

// path maps bucket/key to a file, refusing keys that leave the bucket.
func (s *Storage) path(bucket, key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", errors.New("empty object key")
	}

	root := filepath.Join(s.base, bucket)
	p := filepath.Join(root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, root+string(filepath.Separator)) {
		return "", fmt.Errorf("object key %q escapes the bucket", key)
	}
	return p, nil
}
