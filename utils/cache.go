// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"cosecha/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CapabilityCacheClient caches admin-capability lookups.
	CapabilityCacheClient *redis.Client
	// IdentityCacheClient caches resolved collector display names.
	IdentityCacheClient *redis.Client
)

// InitRedis initializes the Redis clients used by the resolvers.
func InitRedis() {
	CapabilityCacheClient = newRedisClient(config.AppConfig.RedisCapabilityDB)
	IdentityCacheClient = newRedisClient(config.AppConfig.RedisIdentityDB)
}

func newRedisClient(db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (db %d): %v", db, err)
	}
	return client
}

// GetCapabilityCacheClient returns the Redis client for capability caching.
func GetCapabilityCacheClient() *redis.Client {
	if CapabilityCacheClient == nil {
		CapabilityCacheClient = newRedisClient(config.AppConfig.RedisCapabilityDB)
	}
	return CapabilityCacheClient
}

// GetIdentityCacheClient returns the Redis client for identity caching.
func GetIdentityCacheClient() *redis.Client {
	if IdentityCacheClient == nil {
		IdentityCacheClient = newRedisClient(config.AppConfig.RedisIdentityDB)
	}
	return IdentityCacheClient
}
