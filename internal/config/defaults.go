package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	defaultPort        = "5555"
	defaultServiceName = "drive-fetch-backend"
	defaultDriveURL    = "https://drive.google.com"
	defaultAuthHost    = "accounts.google.com"
	defaultMaxFileSize = 100 * 1024 * 1024 // 100MB
)

// DefaultHTTPConfig returns defaults for the outbound client and listener
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:   0,
		UserAgent: "drive-fetch-backend/1.0",
		Addr:      ":" + defaultPort,
	}
}

// DefaultDriveConfig returns the public Google Drive endpoints
func DefaultDriveConfig() DriveConfig {
	return DriveConfig{
		BaseURL:     defaultDriveURL,
		AuthHost:    defaultAuthHost,
		MaxFileSize: defaultMaxFileSize,
	}
}

// DefaultHandlerConfig returns sensible defaults for handler configuration
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		Timeout:        0,
		MaxRequestSize: 10 * 1024 * 1024, // 10MB
		EnableMetrics:  true,
		EnableTracing:  true,
		Platform:       "", // Auto-detect
	}
}

// DefaultStorageConfig keeps cached files in the process temp directory
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Provider:   "filesystem",
		Path:       os.TempDir(),
		Bucket:     "drive-fetch",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		S3: S3Config{
			Region: "us-east-2",
		},
	}
}

// DefaultMetricsConfig keeps metrics on the Prometheus endpoint only
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Backend:       "prometheus",
		FlushInterval: 10 * time.Second,
	}
}

// DefaultConfig returns a complete configuration with sensible defaults.
// Useful for tests that only need to override a few values.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		ServiceName: defaultServiceName,
		Version:     "1.0.0",
		LogLevel:    "info",

		HTTP:    DefaultHTTPConfig(),
		Drive:   DefaultDriveConfig(),
		Handler: DefaultHandlerConfig(),
		Storage: DefaultStorageConfig(),
		Metrics: DefaultMetricsConfig(),
	}
}

// storagePath is STORAGE_PATH or the OS temp directory
func storagePath() string {
	return filepath.Clean(getEnv("STORAGE_PATH", os.TempDir()))
}
