package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/yashgoyal264-hub/airline-invoice-extractor/internal/adapters/http"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/cache"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/config"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/handler/platforms"
	infrastorage "github.com/yashgoyal264-hub/airline-invoice-extractor/internal/infrastructure/storage"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/server"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/service/fetcher"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/usecase"
)

func main() {
	startTime := time.Now()

	cfg := loadConfiguration()

	provider, err := observability.NewProviderFromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize observability: %v", err)
	}
	defer provider.Close()

	deps := initializeDependencies(cfg, provider)

	app := buildApplication(cfg, provider, deps)

	startApplication(cfg, app, startTime)
}

// Dependencies holds the initialized infrastructure components
type Dependencies struct {
	cache   *cache.Cache
	fetcher domain.FileFetcher
}

// Application holds the assembled server
type Application struct {
	server  *server.Server
	logger  types.Logger
	metrics types.Metrics
}

func loadConfiguration() *config.Config {
	cfgProvider := config.GetProvider()
	cfgProvider.MustLoad()
	return cfgProvider.MustGet()
}

func initializeDependencies(cfg *config.Config, provider types.Provider) *Dependencies {
	logger := provider.Logger("main")
	logger.Info(context.Background(), "Starting application", types.Fields{
		"service":     cfg.ServiceName,
		"version":     cfg.Version,
		"environment": cfg.Environment,
		"storage":     cfg.Storage.Provider,
	})

	return &Dependencies{
		cache:   initializeCache(cfg, provider),
		fetcher: createFetcher(cfg, provider),
	}
}

// initializeCache builds the configured object storage and the file cache on top of it
func initializeCache(cfg *config.Config, provider types.Provider) *cache.Cache {
	logger, metrics := provider.Logger("storage"), provider.Metrics("storage")

	store, err := infrastorage.NewFactory(logger, metrics).Create(cfg)
	if err != nil {
		logger.Error(context.Background(), "Failed to initialize storage", err, nil)
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	fileCache := cache.New(store, cfg.Storage.Bucket, provider.Logger("cache"), provider.Metrics("cache"))

	ctx := context.Background()
	if cfg.Storage.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Storage.Timeout)
		defer cancel()
	}

	if err := fileCache.Init(ctx); err != nil {
		logger.Error(ctx, "Failed to initialize file cache", err, nil)
		log.Fatalf("Failed to initialize file cache: %v", err)
	}

	logger.Info(ctx, "Storage initialized successfully", types.Fields{"bucket": cfg.Storage.Bucket})
	return fileCache
}

func createFetcher(cfg *config.Config, provider types.Provider) domain.FileFetcher {
	client := httpadapter.NewClientWithConfig(cfg.HTTP)
	return fetcher.New(client, cfg.Drive, provider.Logger("fetcher"), provider.Metrics("fetcher"))
}

func buildApplication(cfg *config.Config, provider types.Provider, deps *Dependencies) *Application {
	build := func(w handler.Worker) *handler.Handler {
		return handler.NewFactory(w, provider).WithHandlerConfig(cfg.Handler).Create()
	}

	statusWorker := usecase.NewStatusWorker(cfg.ServiceName, cfg.Version, deps.cache)
	downloadWorker := usecase.NewDownloadWorker(deps.fetcher, provider.Logger("usecase.download"), provider.Metrics("usecase.download"))
	batchWorker := usecase.NewBatchWorker(deps.fetcher, deps.cache, provider.Logger("usecase.batch"), provider.Metrics("usecase.batch"))
	fileWorker := usecase.NewFileWorker(deps.cache, provider.Logger("usecase.file"), provider.Metrics("usecase.file"))

	handlers := server.Handlers{
		Status:   build(statusWorker),
		Download: build(downloadWorker),
		Batch:    build(batchWorker),
		File:     build(fileWorker),
	}

	return &Application{
		server:  server.New(cfg, handlers, nil, provider.Logger("server")),
		logger:  provider.Logger("main"),
		metrics: provider.Metrics("main"),
	}
}

// startApplication runs on Lambda or as an HTTP server until SIGINT/SIGTERM
func startApplication(cfg *config.Config, app *Application, startTime time.Time) {
	platform := cfg.Handler.Platform
	if platform == "" || platform == "auto" {
		platform = handler.DetectPlatform()
	}

	app.metrics.RecordSuccess("application_start")

	if platform == handler.PlatformLambda {
		app.logger.Info(context.Background(), "Starting Lambda handler", nil)
		platforms.NewLambdaAdapter(app.server.Router(), app.logger).Start()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			app.logger.Error(context.Background(), "HTTP server failed", err, nil)
			log.Fatalf("HTTP server failed: %v", err)
		}
	case <-ctx.Done():
		if err := handler.GracefulShutdown(app.logger, app.metrics, startTime, app.server.Stop); err != nil {
			log.Fatalf("Shutdown failed: %v", err)
		}
	}
}
