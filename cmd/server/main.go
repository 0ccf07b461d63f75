// @title           vidtube API
// @version         1.0
// @description     Video sharing backend: accounts, channels, videos, reactions, comments and uploads.

// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name access_token

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"vidtube/internal/cache"
	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/media"
	"vidtube/internal/realtime"
	"vidtube/internal/repositories"
	"vidtube/internal/response"
	"vidtube/internal/router"
	"vidtube/internal/services"
	"vidtube/internal/utils/appinfo"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting vidtube",
		zap.String("version", appinfo.GetVersion()),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Application stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize database
	dbManager, err := database.Open(ctx, &cfg.Database, database.NewMetrics(registry), logger.Named("database"))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbManager.Close()

	if health := dbManager.Health(ctx); health.Status == database.StatusUnhealthy {
		return fmt.Errorf("database is not healthy: %s", strings.Join(health.Errors, "; "))
	}
	logger.Info("Database initialized successfully")

	repos, err := repositories.NewCollection(dbManager, logger.Named("repositories"))
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	cacheInstance, err := cache.NewCache(buildCacheConfig(cfg), logger.Named("cache"))
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}

	// A missing media provider only disables uploads
	uploader, err := media.New(ctx, cfg.Media, logger.Named("media"))
	if err != nil {
		logger.Warn("Media uploader unavailable, uploads will fail", zap.Error(err))
		uploader = nil
	} else {
		logger.Info("Media uploader initialized", zap.String("provider", uploader.Provider()))
	}

	hub := realtime.NewHub(cfg.Server.AllowedOrigins, registry, logger.Named("realtime"))

	serviceCollection, err := services.NewServiceCollection(services.Dependencies{
		Repositories: repos,
		Cache:        cacheInstance,
		Uploader:     uploader,
		Publisher:    hub,
		Registerer:   registry,
		Logger:       logger,
	}, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	serviceCollection.RegisterHealthChecker(services.CheckerFunc("database", databaseChecker(dbManager)))

	responseBuilder := response.NewBuilder(&response.Config{
		PrettyJSON:         cfg.IsDevelopment(),
		MaskInternalErrors: cfg.Logging.MaskInternalErrors,
	}, logger.Named("response"))

	handler := router.SetupRouter(router.Options{
		Services:        serviceCollection,
		Live:            hub,
		Config:          cfg,
		Registerer:      registry,
		Gatherer:        registry,
		ResponseBuilder: responseBuilder,
		Logger:          logger.Named("http"),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down application...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("Server shutdown completed")
	}

	if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
		logger.Error("Service shutdown failed", zap.Error(err))
	}
	return nil
}

func buildCacheConfig(cfg *config.Config) *cache.Config {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Provider = cfg.Cache.Provider
	cacheConfig.RedisURL = cfg.Cache.RedisURL
	if cfg.Cache.VideoTTL > 0 {
		cacheConfig.TTL = cfg.Cache.VideoTTL
	}
	return cacheConfig
}

func databaseChecker(db *database.Manager) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		health := db.Health(ctx)
		if health.Status == database.StatusUnhealthy {
			return errors.New(strings.Join(health.Errors, "; "))
		}
		return nil
	}
}

// initLogger builds JSON output at info in production and the development
// console config at debug elsewhere. LOG_LEVEL overrides either.
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	switch cfg.Server.Environment {
	case "production":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "staging":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if cfg.Logging.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Logging.Level, err)
		}
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}
	switch cfg.Logging.Format {
	case "json":
		zapConfig.Encoding = "json"
	case "console":
		zapConfig.Encoding = "console"
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
