package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/tablepos/pkg/config"
)

// Role says what this process relies on Redis for.
type Role string

const (
	// RoleOccupancy: Redis holds the authoritative occupancy flags
	// (OCCUPANCY_BACKEND=redis). Losing it stops the floor.
	RoleOccupancy Role = "occupancy"
	// RoleCache: Redis only backs the order read cache. Losing it costs
	// latency, never correctness.
	RoleCache Role = "cache"
)

// RoleFor derives the Redis role from the configured occupancy backend.
func RoleFor(cfg *config.Config) Role {
	if cfg.OccupancyBackend == config.BackendRedis {
		return RoleOccupancy
	}
	return RoleCache
}

// RedisClient wraps redis.Client with pool settings tuned to its Role.
type RedisClient struct {
	client *redis.Client
	role   Role
}

// NewRedisClient parses cfg.RedisURL, applies the pool settings for the
// configured role and verifies connectivity via Ping.
func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	role := RoleFor(cfg)
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	applyPool(opts, role)

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis (%s): %w", role, err)
	}

	return &RedisClient{client: rdb, role: role}, nil
}

// applyPool sizes the pool for the role. Occupancy flags sit on every
// open/commit path, so that role keeps warm connections and retries harder;
// the cache fails fast and lets callers fall through to storage.
func applyPool(opts *redis.Options, role Role) {
	opts.DialTimeout = 5 * time.Second
	opts.PoolTimeout = 4 * time.Second
	switch role {
	case RoleOccupancy:
		opts.PoolSize = 20
		opts.MinIdleConns = 4
		opts.MaxRetries = 3
		opts.ReadTimeout = 3 * time.Second
		opts.WriteTimeout = 3 * time.Second
	default:
		opts.PoolSize = 10
		opts.MinIdleConns = 1
		opts.MaxRetries = 1
		opts.ReadTimeout = 500 * time.Millisecond
		opts.WriteTimeout = 500 * time.Millisecond
	}
}

// Role reports what this client backs.
func (r *RedisClient) Role() Role {
	return r.role
}

// Optional reports whether the service stays healthy without Redis.
// The health endpoint uses it to keep a cache outage from failing readiness.
func (r *RedisClient) Optional() bool {
	return r.role != RoleOccupancy
}

// Ping checks the Redis connection health.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping (%s): %w", r.role, err)
	}
	return nil
}

// Close shuts down the Redis connection pool.
func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Client returns the underlying redis.Client for direct use.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
