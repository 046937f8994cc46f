package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appdelivery "github.com/storefront/backend/internal/application/delivery"
)

// RedisDispatchGuard implements DispatchGuard using Redis. It is suitable
// for distributed deployments where multiple instances must not dispatch
// the same order concurrently.
type RedisDispatchGuard struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisDispatchGuard creates a new Redis-backed dispatch guard.
// The TTL bounds how long a crashed dispatch can hold the guard.
func NewRedisDispatchGuard(cfg RedisConfig, ttl time.Duration) (*RedisDispatchGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisDispatchGuardWithClient(client, "", ttl), nil
}

// NewRedisDispatchGuardWithClient creates a guard with an existing Redis
// client. This is useful for testing or when sharing a client across
// components.
func NewRedisDispatchGuardWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisDispatchGuard {
	if keyPrefix == "" {
		keyPrefix = "dispatch:guard:"
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisDispatchGuard{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Acquire takes the guard for an order. Returns true if the guard was
// newly taken, false if another dispatch currently holds it. Uses SETNX
// with TTL in a single atomic operation.
func (g *RedisDispatchGuard) Acquire(ctx context.Context, orderID uuid.UUID) (bool, error) {
	key := g.keyPrefix + orderID.String()

	result, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire dispatch guard: %w", err)
	}

	return result, nil
}

// Release frees the guard for an order.
func (g *RedisDispatchGuard) Release(ctx context.Context, orderID uuid.UUID) error {
	key := g.keyPrefix + orderID.String()

	if err := g.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release dispatch guard: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (g *RedisDispatchGuard) Close() error {
	return g.client.Close()
}

// Ensure RedisDispatchGuard implements DispatchGuard
var _ appdelivery.DispatchGuard = (*RedisDispatchGuard)(nil)
