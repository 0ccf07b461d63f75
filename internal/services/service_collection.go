// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"vidtube/internal/cache"
	"vidtube/internal/config"
	"vidtube/internal/media"
	"vidtube/internal/repositories"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ServiceCollection holds all services with dependency injection
type ServiceCollection struct {
	// Core Services
	AuthService     AuthService
	ChannelService  ChannelService
	VideoService    VideoService
	ReactionService ReactionService
	CommentService  CommentService
	UploadService   UploadService

	// Infrastructure Components
	Repositories *repositories.Collection
	Cache        cache.Cache
	Metrics      *Metrics
	Logger       *zap.Logger
	Config       *config.Config

	healthCheckers map[string]HealthChecker
	startTime      time.Time
	mu             sync.RWMutex
}

// Dependencies are the components the services are built from. Uploader,
// Publisher and Registerer may be nil.
type Dependencies struct {
	Repositories *repositories.Collection
	Cache        cache.Cache
	Uploader     media.Uploader
	Publisher    StatsPublisher
	Registerer   prometheus.Registerer
	Logger       *zap.Logger
}

// ServiceHealth represents the health status of the service collection
type ServiceHealth struct {
	Status       string                   `json:"status"`
	Timestamp    time.Time                `json:"timestamp"`
	Uptime       string                   `json:"uptime"`
	Dependencies map[string]ServiceStatus `json:"dependencies"`
	Issues       []string                 `json:"issues,omitempty"`
}

// ServiceStatus represents the status of an individual dependency
type ServiceStatus struct {
	Name         string `json:"name"`
	Status       string `json:"status"` // healthy, unhealthy
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// NewServiceCollection creates the services over the given dependencies
func NewServiceCollection(deps Dependencies, cfg *config.Config) (*ServiceCollection, error) {
	if deps.Repositories == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics := NewMetrics(deps.Registerer)
	repos := deps.Repositories

	sc := &ServiceCollection{
		Repositories:   repos,
		Cache:          deps.Cache,
		Metrics:        metrics,
		Logger:         logger,
		Config:         cfg,
		healthCheckers: make(map[string]HealthChecker),
		startTime:      time.Now(),
	}

	sc.AuthService = NewAuthService(repos.User, AuthConfig{
		JWTSecret:  []byte(cfg.Auth.JWTSecret),
		TokenTTL:   cfg.Auth.JWTExpiry,
		BCryptCost: cfg.Auth.BCryptCost,
	}, metrics, logger.Named("auth"))
	sc.ChannelService = NewChannelService(repos.Channel, repos.Video, logger.Named("channels"))
	sc.VideoService = NewVideoService(repos.Video, repos.Channel, deps.Cache, cfg.Cache.VideoTTL, metrics, logger.Named("videos"))
	sc.ReactionService = NewReactionService(repos.Reaction, sc.VideoService, deps.Publisher, metrics, logger.Named("reactions"))
	sc.CommentService = NewCommentService(repos.Comment, repos.Video, repos.Reaction, deps.Publisher, logger.Named("comments"))
	sc.UploadService = NewUploadService(deps.Uploader, cfg.Media.MaxFileSize, metrics, logger.Named("upload"))

	if deps.Cache != nil {
		sc.RegisterHealthChecker(CheckerFunc("cache", deps.Cache.Health))
	}

	logger.Info("Service collection initialized")
	return sc, nil
}

// RegisterHealthChecker adds a dependency to HealthCheck
func (sc *ServiceCollection) RegisterHealthChecker(hc HealthChecker) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.healthCheckers[hc.ServiceName()] = hc
}

// HealthCheck runs every registered checker
func (sc *ServiceCollection) HealthCheck(ctx context.Context) *ServiceHealth {
	sc.mu.RLock()
	checkers := make([]HealthChecker, 0, len(sc.healthCheckers))
	for _, hc := range sc.healthCheckers {
		checkers = append(checkers, hc)
	}
	sc.mu.RUnlock()

	sort.Slice(checkers, func(i, j int) bool { return checkers[i].ServiceName() < checkers[j].ServiceName() })

	health := &ServiceHealth{
		Status:       "healthy",
		Timestamp:    time.Now(),
		Uptime:       time.Since(sc.startTime).Round(time.Second).String(),
		Dependencies: make(map[string]ServiceStatus, len(checkers)),
	}

	for _, hc := range checkers {
		start := time.Now()
		status := ServiceStatus{Name: hc.ServiceName(), Status: "healthy"}
		if err := hc.HealthCheck(ctx); err != nil {
			status.Status = "unhealthy"
			status.Error = err.Error()
			health.Status = "unhealthy"
			health.Issues = append(health.Issues, fmt.Sprintf("%s: %v", hc.ServiceName(), err))
		}
		status.ResponseTime = time.Since(start).String()
		health.Dependencies[status.Name] = status
	}

	if health.Status != "healthy" {
		sc.Logger.Warn("Health check failed", zap.Strings("issues", health.Issues))
	}
	return health
}

// Shutdown releases the cache connection
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	if sc.Cache == nil {
		return nil
	}
	if err := sc.Cache.Close(); err != nil {
		return fmt.Errorf("failed to close cache: %w", err)
	}
	sc.Logger.Info("Service collection shut down")
	return nil
}

type checkerFunc struct {
	name string
	fn   func(ctx context.Context) error
}

// CheckerFunc adapts a function to HealthChecker
func CheckerFunc(name string, fn func(ctx context.Context) error) HealthChecker {
	return &checkerFunc{name: name, fn: fn}
}

func (c *checkerFunc) HealthCheck(ctx context.Context) error { return c.fn(ctx) }
func (c *checkerFunc) ServiceName() string                   { return c.name }
