package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type memoryCache struct {
	mu              sync.RWMutex
	items           map[string]*cacheItem
	maxKeys         int
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	logger          *zap.Logger
	hits            atomic.Int64
	misses          atomic.Int64
	stopCh          chan struct{}
	closeOnce       sync.Once
}

type cacheItem struct {
	value      []byte
	expiresAt  time.Time
	accessedAt atomic.Int64
}

// NewMemoryCache creates an in-memory cache with a background janitor
func NewMemoryCache(config *Config, logger *zap.Logger) Cache {
	if config == nil {
		config = DefaultConfig()
	}
	interval := config.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}

	c := &memoryCache{
		items:           make(map[string]*cacheItem),
		maxKeys:         config.MaxKeys,
		defaultTTL:      config.TTL,
		cleanupInterval: interval,
		logger:          logger,
		stopCh:          make(chan struct{}),
	}

	go c.cleanup()
	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists || time.Now().After(item.expiresAt) {
		c.misses.Add(1)
		return nil, false, nil
	}

	item.accessedAt.Store(time.Now().UnixNano())
	c.hits.Add(1)

	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, true, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	item := &cacheItem{value: stored, expiresAt: time.Now().Add(ttl)}
	item.accessedAt.Store(time.Now().UnixNano())

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxKeys > 0 && len(c.items) >= c.maxKeys {
		c.evictLRU()
	}
	c.items[key] = item
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[key]
	return ok && time.Now().Before(item.expiresAt)
}

func (c *memoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*cacheItem)
	return nil
}

func (c *memoryCache) Stats() Stats {
	c.mu.RLock()
	keys := len(c.items)
	c.mu.RUnlock()
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Keys: int64(keys)}
}

func (c *memoryCache) Health(ctx context.Context) error {
	return nil
}

func (c *memoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopCh) })
	return nil
}

func (c *memoryCache) cleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *memoryCache) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expired := 0
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			expired++
		}
	}

	if expired > 0 {
		c.logger.Debug("Cleaned up expired cache items",
			zap.Int("expired_count", expired),
			zap.Int("remaining_count", len(c.items)),
		)
	}
}

// evictLRU must be called with the write lock held.
func (c *memoryCache) evictLRU() {
	var (
		oldestKey  string
		oldestTime int64
	)
	for key, item := range c.items {
		if at := item.accessedAt.Load(); oldestKey == "" || at < oldestTime {
			oldestKey = key
			oldestTime = at
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
