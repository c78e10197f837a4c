package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"social-hub/domain/model"
	"social-hub/domain/repository"
	"social-hub/infrastructure/logger"
)

const connectionTTL = 5 * time.Minute

// redisCommands is the slice of the Redis API the cache uses.
type redisCommands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ConnectionCache is a read-through Redis cache in front of the connection
// repository. Writes and deletes invalidate after the inner write commits, so
// a concurrent read racing a disconnect cannot re-cache the removed record.
// With a nil Redis client it degrades to pass-through.
type ConnectionCache struct {
	client redisCommands
	inner  repository.IConnection
}

func NewConnectionCache(client *redis.Client, inner repository.IConnection) repository.IConnection {
	c := &ConnectionCache{inner: inner}
	if client != nil {
		c.client = client
	}
	return c
}

func connectionKey(userID, platform string) string {
	return fmt.Sprintf("connection:%s:%s", userID, platform)
}

func (c *ConnectionCache) Get(ctx context.Context, userID, platform string) (*model.PlatformConnection, error) {
	if c.client == nil {
		return c.inner.Get(ctx, userID, platform)
	}
	key := connectionKey(userID, platform)
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var conn model.PlatformConnection
		if json.Unmarshal(raw, &conn) == nil {
			return &conn, nil
		}
	}
	conn, err := c.inner.Get(ctx, userID, platform)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(conn); err == nil {
		if err := c.client.Set(ctx, key, raw, connectionTTL).Err(); err != nil {
			logger.GetLogger().WithField("error", err).Warn("connection cache set failed")
		}
	}
	return conn, nil
}

func (c *ConnectionCache) Upsert(ctx context.Context, conn *model.PlatformConnection) error {
	if err := c.inner.Upsert(ctx, conn); err != nil {
		return err
	}
	c.invalidate(ctx, conn.UserID, conn.Platform)
	return nil
}

func (c *ConnectionCache) Delete(ctx context.Context, userID, platform string) (bool, error) {
	deleted, err := c.inner.Delete(ctx, userID, platform)
	c.invalidate(ctx, userID, platform)
	return deleted, err
}

func (c *ConnectionCache) ListByUser(ctx context.Context, userID string) ([]*model.PlatformConnection, error) {
	return c.inner.ListByUser(ctx, userID)
}

func (c *ConnectionCache) invalidate(ctx context.Context, userID, platform string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, connectionKey(userID, platform)).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("connection cache invalidation failed")
	}
}
