package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"social-hub/infrastructure/logger"
)

// NewCache connects to Redis. A nil client is returned with the error when
// Redis is unreachable; callers degrade gracefully without caching.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not reachable")
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
