// Package cache provides the optional generation-result cache.
// This package is internal and should not be imported by external projects.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/postcraft/postcraft/types"
)

// Config configures the Redis-backed result cache.
type Config struct {
	// Addr is the Redis address. Empty disables the cache entirely.
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`

	// DefaultTTL bounds how long a generation result is reused.
	DefaultTTL time.Duration `yaml:"default_ttl" json:"default_ttl"`

	PoolSize     int `yaml:"pool_size" json:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns" json:"min_idle_conns"`
}

// DefaultConfig returns the default cache configuration (disabled).
func DefaultConfig() Config {
	return Config{
		DefaultTTL:   10 * time.Minute,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// Manager stores generation results keyed by request hash. Identical
// resubmissions within the TTL are served without re-billing providers.
type Manager struct {
	redis  *redis.Client
	config Config
	logger *zap.Logger
}

// NewManager creates a cache manager. A nil *Manager is a valid no-op
// cache; callers may keep it nil when Config.Addr is empty.
func NewManager(config Config, logger *zap.Logger) (*Manager, error) {
	if config.Addr == "" {
		return nil, fmt.Errorf("cache address is empty")
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Manager{
		redis:  client,
		config: config,
		logger: logger.With(zap.String("component", "cache")),
	}, nil
}

// Key derives the cache key for a generation request: a SHA-256 of the
// normalized request JSON.
func Key(req *types.GenerationRequest) string {
	data, _ := json.Marshal(req)
	sum := sha256.Sum256(data)
	return "postcraft:result:" + hex.EncodeToString(sum[:])
}

// GetResult returns the cached result for key, or (nil, false) on a miss.
// Cache errors are logged and treated as misses.
func (m *Manager) GetResult(ctx context.Context, key string) (*types.GenerationResult, bool) {
	if m == nil {
		return nil, false
	}

	data, err := m.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			m.logger.Warn("cache get failed", zap.Error(err))
		}
		return nil, false
	}

	var result types.GenerationResult
	if err := json.Unmarshal(data, &result); err != nil {
		m.logger.Warn("cache entry is corrupt, discarding", zap.String("key", key), zap.Error(err))
		_ = m.redis.Del(ctx, key).Err()
		return nil, false
	}

	return &result, true
}

// SetResult stores a result under key. Only successful results are worth
// caching; callers should skip degraded envelopes. Errors are logged.
func (m *Manager) SetResult(ctx context.Context, key string, result *types.GenerationResult) {
	if m == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		m.logger.Warn("failed to marshal result for cache", zap.Error(err))
		return
	}

	if err := m.redis.Set(ctx, key, data, m.config.DefaultTTL).Err(); err != nil {
		m.logger.Warn("cache set failed", zap.Error(err))
	}
}

// Ping verifies the Redis connection. Used by the readiness probe.
func (m *Manager) Ping(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.redis.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	return m.redis.Close()
}
