package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvHelpers(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		envValue string
		check    func(t *testing.T, key string)
	}{
		{
			name:     "int parsed",
			key:      "TEST_CFG_INT",
			envValue: "42",
			check: func(t *testing.T, key string) {
				assert.Equal(t, 42, getInt(key, 10))
			},
		},
		{
			name:     "invalid int falls back",
			key:      "TEST_CFG_INT_BAD",
			envValue: "forty-two",
			check: func(t *testing.T, key string) {
				assert.Equal(t, 10, getInt(key, 10))
			},
		},
		{
			name:     "int64 parsed",
			key:      "TEST_CFG_INT64",
			envValue: "1048576",
			check: func(t *testing.T, key string) {
				assert.Equal(t, int64(1048576), getInt64(key, 1))
			},
		},
		{
			name:     "bool parsed",
			key:      "TEST_CFG_BOOL",
			envValue: "false",
			check: func(t *testing.T, key string) {
				assert.False(t, getBool(key, true))
			},
		},
		{
			name:     "duration parsed",
			key:      "TEST_CFG_DURATION",
			envValue: "45s",
			check: func(t *testing.T, key string) {
				assert.Equal(t, 45*time.Second, getDuration(key, time.Second))
			},
		},
		{
			name:     "invalid duration falls back to default",
			key:      "TEST_CFG_DURATION_BAD",
			envValue: "soon",
			check: func(t *testing.T, key string) {
				assert.Equal(t, time.Second, getDuration(key, time.Second))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.envValue)
			tt.check(t, tt.key)
		})
	}
}

func TestListenAddr(t *testing.T) {
	t.Run("default port", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("HTTP_ADDR", "")
		assert.Equal(t, ":5555", listenAddr())
	})

	t.Run("port from environment", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("HTTP_ADDR", "")
		assert.Equal(t, ":8080", listenAddr())
	})

	t.Run("explicit address wins", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
		assert.Equal(t, "127.0.0.1:9000", listenAddr())
	})
}

func TestProvider_Load(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("PORT", "6000")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DRIVE_BASE_URL", "http://127.0.0.1:9999")
	t.Setenv("FETCH_MAX_FILE_SIZE", "2048")
	t.Setenv("STORAGE_PATH", t.TempDir())
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("METRICS_BACKEND", "cloudwatch")
	t.Setenv("CLOUDWATCH_NAMESPACE", "")
	t.Setenv("CLOUDWATCH_REGION", "")
	t.Setenv("AWS_REGION", "eu-west-1")

	p := &Provider{}
	require.NoError(t, p.Load())
	assert.True(t, p.IsLoaded())

	cfg := p.MustGet()
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "drive-fetch-backend", cfg.ServiceName)
	assert.Equal(t, ":6000", cfg.HTTP.Addr)
	assert.Equal(t, time.Duration(0), cfg.HTTP.Timeout)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Drive.BaseURL)
	assert.Equal(t, "accounts.google.com", cfg.Drive.AuthHost)
	assert.Equal(t, int64(2048), cfg.Drive.MaxFileSize)
	assert.Equal(t, "filesystem", cfg.Storage.Provider)
	assert.Equal(t, "drive-fetch", cfg.Storage.Bucket)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "cloudwatch", cfg.Metrics.Backend)
	assert.Equal(t, "drive-fetch-backend/test", cfg.Metrics.CloudWatchNamespace)
	assert.Equal(t, "eu-west-1", cfg.Metrics.CloudWatchRegion)
	assert.Equal(t, 10*time.Second, cfg.Metrics.FlushInterval)

	// Second load is a no-op even if the environment changed
	t.Setenv("PORT", "7000")
	require.NoError(t, p.Load())
	assert.Equal(t, ":6000", p.MustGet().HTTP.Addr)

	require.NoError(t, p.Reload())
	assert.Equal(t, ":7000", p.MustGet().HTTP.Addr)
}

func TestProvider_LoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "http")
	t.Setenv("HTTP_ADDR", "")

	p := &Provider{}
	err := p.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PORT")
	assert.False(t, p.IsLoaded())
}

func TestProvider_GetBeforeLoad(t *testing.T) {
	p := &Provider{}

	_, err := p.Get()
	assert.Error(t, err)
	assert.Panics(t, func() { p.MustGet() })
}

func TestProvider_Reset(t *testing.T) {
	t.Setenv("STORAGE_PATH", t.TempDir())

	p := &Provider{}
	require.NoError(t, p.Load())
	p.Reset()

	assert.False(t, p.IsLoaded())
	_, err := p.Get()
	assert.Error(t, err)
}

func TestProvider_LoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVICE_VERSION=2.0.0\nLOG_LEVEL=warn\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("LOG_LEVEL=error\n"), 0o644))

	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("STORAGE_PATH", dir)
	// godotenv.Load skips keys present in the environment, even when empty
	for _, key := range []string{"SERVICE_VERSION", "LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	p := &Provider{}
	require.NoError(t, p.Load())

	cfg := p.MustGet()
	assert.Equal(t, "2.0.0", cfg.Version)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			modify: func(c *Config) {},
		},
		{
			name:    "missing address",
			modify:  func(c *Config) { c.HTTP.Addr = "" },
			wantErr: "PORT or HTTP_ADDR is required",
		},
		{
			name:    "non-positive max file size",
			modify:  func(c *Config) { c.Drive.MaxFileSize = 0 },
			wantErr: "FETCH_MAX_FILE_SIZE must be positive",
		},
		{
			name:    "unknown storage provider",
			modify:  func(c *Config) { c.Storage.Provider = "gcs" },
			wantErr: "unsupported STORAGE_PROVIDER",
		},
		{
			name: "s3 without region",
			modify: func(c *Config) {
				c.Storage.Provider = "s3"
				c.Storage.S3.Region = ""
			},
			wantErr: "AWS_REGION is required",
		},
		{
			name:    "unknown metrics backend",
			modify:  func(c *Config) { c.Metrics.Backend = "statsd" },
			wantErr: "unsupported METRICS_BACKEND",
		},
		{
			name: "cloudwatch without region",
			modify: func(c *Config) {
				c.Metrics.Backend = "cloudwatch"
				c.Metrics.CloudWatchRegion = ""
			},
			wantErr: "CLOUDWATCH_REGION or AWS_REGION is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_EnvironmentDetection(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Environment = "Production"
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsLocal())

	cfg.Environment = "dev"
	assert.True(t, cfg.IsLocal())

	cfg.Environment = "testing"
	assert.True(t, cfg.IsTest())
}
