package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/CCDD2022/mall-system/config"

	"github.com/redis/go-redis/v9"
)

var redisDB redis.UniversalClient

// InitRedis initializes redis client for standalone or cluster based on config
func InitRedis(cfg *config.RedisConfig) (redis.UniversalClient, error) {
	// Build addresses
	addrs := cfg.Addrs
	if len(addrs) == 0 {
		addrs = []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)}
	}

	// Universal client handles standalone and cluster transparently
	uopts := &redis.UniversalOptions{
		Addrs:           addrs,
		DB:              cfg.DB,
		Password:        cfg.Password,
		PoolSize:        100,
		MinIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolTimeout:     4 * time.Second,
	}

	redisDB = redis.NewUniversalClient(uopts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := redisDB.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis连通失败: %w", err)
	}
	return redisDB, nil
}

func GetRedisDB() redis.UniversalClient {
	return redisDB
}
