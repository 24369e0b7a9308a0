// Package infrastorage selects the object storage behind the file cache.
package infrastorage

import (
	"context"
	"fmt"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/config"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/storage"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/infrastructure/storage/adapters/fs"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/infrastructure/storage/adapters/s3"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

type Factory struct {
	logger  types.Logger
	metrics types.Metrics
}

// NewFactory panics without a logger or metrics; every adapter reports
// through both.
func NewFactory(logger types.Logger, metrics types.Metrics) *Factory {
	if logger == nil || metrics == nil {
		panic("infrastorage: logger and metrics are required")
	}
	return &Factory{logger: logger, metrics: metrics}
}

// Create builds the adapter named by STORAGE_PROVIDER. An empty provider
// means the filesystem.
func (f *Factory) Create(cfg *config.Config) (storage.ObjectStorage, error) {
	sc := cfg.Storage
	f.logger.Info(context.Background(), "Creating storage adapter", types.Fields{
		"provider": sc.Provider,
		"bucket":   sc.Bucket,
	})

	var (
		store storage.ObjectStorage
		err   error
	)
	// store stays nil unless the constructor succeeded
	switch sc.Provider {
	case "", "filesystem":
		var s *fs.Storage
		if s, err = fs.NewStorage(sc.Path, f.logger, f.metrics); err == nil {
			store = s
		}
	case "s3":
		var c *s3.Client
		if c, err = s3.New(sc, f.logger, f.metrics); err == nil {
			store = c
		}
	default:
		err = fmt.Errorf("unsupported storage adapter: %s", sc.Provider)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
