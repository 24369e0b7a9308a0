package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Provider loads the configuration once and hands it out to every caller.
type Provider struct {
	mu     sync.RWMutex
	config *Config
}

var (
	instance *Provider
	once     sync.Once
)

// GetProvider returns the process-wide provider.
func GetProvider() *Provider {
	once.Do(func() {
		instance = &Provider{}
	})
	return instance
}

// Load reads .env files and the environment. Calls after the first
// successful one are no-ops; use Reload to pick up changes.
func (p *Provider) Load() error {
	return p.load(false)
}

// Reload re-reads the environment, replacing the current configuration
// only when the new one is valid.
func (p *Provider) Reload() error {
	return p.load(true)
}

func (p *Provider) load(force bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config != nil && !force {
		return nil
	}

	if !force {
		if err := loadEnvFiles(); err != nil {
			return fmt.Errorf("failed to load env files: %w", err)
		}
	}

	cfg, err := parseConfig()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	p.config = cfg
	return nil
}

// MustLoad is Load for main: it panics on error.
func (p *Provider) MustLoad() {
	if err := p.Load(); err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
}

// Get returns the loaded configuration.
func (p *Provider) Get() (*Config, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.config == nil {
		return nil, errors.New("configuration not loaded; call Load() first")
	}
	return p.config, nil
}

func (p *Provider) MustGet() *Config {
	cfg, err := p.Get()
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func (p *Provider) IsLoaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config != nil
}

// Reset forgets the loaded configuration. Tests use it between cases.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config = nil
}

type envFile struct {
	name      string
	overwrite bool
}

// loadEnvFiles applies .env, then .env.{ENVIRONMENT}, then .env.local.
// The base file never overrides the real environment; the other two do.
func loadEnvFiles() error {
	files := []envFile{{name: ".env"}}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env != "" {
		files = append(files, envFile{name: ".env." + env, overwrite: true})
	}
	files = append(files, envFile{name: ".env.local", overwrite: true})

	for _, f := range files {
		if _, err := os.Stat(f.name); err != nil {
			continue
		}
		load := godotenv.Load
		if f.overwrite {
			load = godotenv.Overload
		}
		if err := load(f.name); err != nil {
			return fmt.Errorf("failed to load %s: %w", f.name, err)
		}
	}
	return nil
}

// parseConfig overlays the environment on DefaultConfig.
func parseConfig() (*Config, error) {
	if port := os.Getenv("PORT"); port != "" && os.Getenv("HTTP_ADDR") == "" {
		if _, err := strconv.Atoi(port); err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
	}

	cfg := DefaultConfig()

	cfg.Environment = getEnv("ENVIRONMENT", "local")
	cfg.ServiceName = getEnv("SERVICE_NAME", cfg.ServiceName)
	cfg.Version = getEnv("SERVICE_VERSION", cfg.Version)
	cfg.LogLevel = getEnv("LOG_LEVEL", "")

	cfg.HTTP.Timeout = getDuration("HTTP_TIMEOUT", cfg.HTTP.Timeout)
	cfg.HTTP.UserAgent = getEnv("HTTP_USER_AGENT", cfg.HTTP.UserAgent)
	cfg.HTTP.Addr = listenAddr()

	cfg.Drive.BaseURL = getEnv("DRIVE_BASE_URL", cfg.Drive.BaseURL)
	cfg.Drive.AuthHost = getEnv("DRIVE_AUTH_HOST", cfg.Drive.AuthHost)
	cfg.Drive.MaxFileSize = getInt64("FETCH_MAX_FILE_SIZE", cfg.Drive.MaxFileSize)

	h := &cfg.Handler
	h.Timeout = getDuration("HANDLER_TIMEOUT", h.Timeout)
	h.MaxRequestSize = getInt64("HANDLER_MAX_REQUEST_SIZE", h.MaxRequestSize)
	h.EnableMetrics = getBool("HANDLER_ENABLE_METRICS", h.EnableMetrics)
	h.EnableTracing = getBool("HANDLER_ENABLE_TRACING", h.EnableTracing)
	h.Platform = getEnv("HANDLER_PLATFORM", h.Platform)

	s := &cfg.Storage
	s.Provider = getEnv("STORAGE_PROVIDER", s.Provider)
	s.Path = storagePath()
	s.Bucket = getEnv("STORAGE_BUCKET", "")
	s.Timeout = getDuration("STORAGE_TIMEOUT", s.Timeout)
	s.MaxRetries = getInt("STORAGE_MAX_RETRIES", s.MaxRetries)
	s.S3.Region = getEnv("AWS_REGION", s.S3.Region)
	s.S3.AccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	s.S3.SecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	s.S3.Endpoint = getEnv("S3_ENDPOINT", "")

	m := &cfg.Metrics
	m.Backend = getEnv("METRICS_BACKEND", m.Backend)
	m.CloudWatchNamespace = getEnv("CLOUDWATCH_NAMESPACE", "")
	m.CloudWatchRegion = getEnv("CLOUDWATCH_REGION", "")
	m.FlushInterval = getDuration("METRICS_FLUSH_INTERVAL", m.FlushInterval)

	cfg.applyDefaults()
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}
