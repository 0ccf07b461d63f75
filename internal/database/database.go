package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vidtube/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Open connects to postgres and applies migrations, retrying both with exponential backoff.
func Open(ctx context.Context, cfg *config.DatabaseConfig, metrics *Metrics, logger *zap.Logger) (*Manager, error) {
	retries := uint64(cfg.ConnectRetries)
	if cfg.ConnectRetries < 0 {
		retries = 0
	}

	var manager *Manager
	connect := func() error {
		m, err := NewManager(ctx, cfg, metrics, logger)
		if err != nil {
			return err
		}
		manager = m
		return nil
	}

	if err := backoff.RetryNotify(connect, newBackoff(ctx, retries), notify(logger, "Database connection failed, retrying")); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrationsPath := determineMigrationsPath(cfg.MigrationsPath)
	logger.Info("Using migrations path", zap.String("path", migrationsPath))

	migrateOp := func() error {
		return manager.Migrate(migrationsPath)
	}

	if err := backoff.RetryNotify(migrateOp, newBackoff(ctx, retries), notify(logger, "Migration attempt failed, retrying")); err != nil {
		manager.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return manager, nil
}

func newBackoff(ctx context.Context, retries uint64) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)
}

func notify(logger *zap.Logger, msg string) backoff.Notify {
	return func(err error, wait time.Duration) {
		logger.Warn(msg, zap.Error(err), zap.Duration("retry_in", wait))
	}
}

// determineMigrationsPath returns the first existing candidate, falling back to the configured path.
func determineMigrationsPath(configPath string) string {
	candidates := []string{configPath}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "migrations"))
	}
	candidates = append(candidates, "migrations", "../../migrations")

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}

	return configPath
}
