package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Core settings
	Environment string
	ServiceName string
	Version     string
	LogLevel    string

	// Component configurations
	HTTP    HTTPConfig
	Drive   DriveConfig
	Handler HandlerConfig
	Storage StorageConfig
	Metrics MetricsConfig
}

// HTTPConfig holds HTTP client and server configuration
type HTTPConfig struct {
	// Timeout applies to outbound requests against the file host.
	// Zero leaves the client without a deadline.
	Timeout   time.Duration
	UserAgent string
	Addr      string // Server address for HTTP mode
}

// DriveConfig holds settings for the shared-file host
type DriveConfig struct {
	BaseURL     string
	AuthHost    string
	MaxFileSize int64
}

// HandlerConfig holds handler configuration
type HandlerConfig struct {
	Timeout        time.Duration
	MaxRequestSize int64
	EnableMetrics  bool
	EnableTracing  bool
	Platform       string // auto-detected if empty
}

// StorageConfig holds configuration for the file cache backend
type StorageConfig struct {
	Provider   string // "filesystem" or "s3"
	Path       string // base directory for the filesystem provider
	Bucket     string
	Timeout    time.Duration
	MaxRetries int
	S3         S3Config
}

// S3Config holds S3-specific configuration
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// MetricsConfig selects where metrics go besides the /metrics endpoint
type MetricsConfig struct {
	Backend             string // "prometheus" or "cloudwatch"
	CloudWatchNamespace string // defaults to "{service}/{environment}"
	CloudWatchRegion    string // defaults to the S3 region
	FlushInterval       time.Duration
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errors []string

	if c.ServiceName == "" {
		errors = append(errors, "SERVICE_NAME is required")
	}
	if c.HTTP.Addr == "" {
		errors = append(errors, "PORT or HTTP_ADDR is required")
	}
	if c.HTTP.Timeout < 0 {
		errors = append(errors, "HTTP_TIMEOUT cannot be negative")
	}
	if c.Handler.Timeout < 0 {
		errors = append(errors, "HANDLER_TIMEOUT cannot be negative")
	}
	if c.Handler.MaxRequestSize <= 0 {
		errors = append(errors, "HANDLER_MAX_REQUEST_SIZE must be positive")
	}
	if c.Drive.BaseURL == "" {
		errors = append(errors, "DRIVE_BASE_URL is required")
	}
	if c.Drive.MaxFileSize <= 0 {
		errors = append(errors, "FETCH_MAX_FILE_SIZE must be positive")
	}

	if err := c.Storage.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	switch c.Metrics.Backend {
	case "prometheus":
	case "cloudwatch":
		if c.Metrics.CloudWatchRegion == "" {
			errors = append(errors, "CLOUDWATCH_REGION or AWS_REGION is required for the cloudwatch metrics backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("unsupported METRICS_BACKEND: %q", c.Metrics.Backend))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// Validate checks the storage settings for the selected provider
func (s *StorageConfig) Validate() error {
	switch s.Provider {
	case "filesystem":
		if s.Path == "" {
			return fmt.Errorf("STORAGE_PATH is required for the filesystem provider")
		}
	case "s3":
		if s.Bucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for the s3 provider")
		}
		if s.S3.Region == "" {
			return fmt.Errorf("AWS_REGION is required for the s3 provider")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_PROVIDER: %q", s.Provider)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("STORAGE_MAX_RETRIES cannot be negative")
	}
	return nil
}

// applyDefaults fills values that depend on other settings
func (c *Config) applyDefaults() {
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = "drive-fetch"
	}

	if c.IsProduction() {
		c.Handler.EnableMetrics = true
	}

	if c.Metrics.CloudWatchNamespace == "" {
		c.Metrics.CloudWatchNamespace = fmt.Sprintf("%s/%s", c.ServiceName, c.Environment)
	}
	if c.Metrics.CloudWatchRegion == "" {
		c.Metrics.CloudWatchRegion = c.Storage.S3.Region
	}

	if c.IsLocal() && c.LogLevel == "" {
		c.LogLevel = "debug"
	}
}
