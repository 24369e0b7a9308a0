package infrastorage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/config"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/infrastructure/storage/adapters/fs"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/mocks"
)

func TestFactory_Create(t *testing.T) {
	factory := NewFactory(mocks.NewNopLogger(), mocks.NewNopMetrics())

	t.Run("filesystem", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Storage.Path = t.TempDir()

		store, err := factory.Create(cfg)
		require.NoError(t, err)
		assert.IsType(t, &fs.Storage{}, store)
	})

	t.Run("unsupported", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Storage.Provider = "ftp"

		_, err := factory.Create(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported storage adapter")
	})
}

func TestNewFactory_RequiresDependencies(t *testing.T) {
	assert.Panics(t, func() { NewFactory(nil, mocks.NewNopMetrics()) })
}
