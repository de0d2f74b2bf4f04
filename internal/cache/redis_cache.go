package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
)

const (
	itemCatalogKey = "catalog:items"
	itemCatalogTTL = 5 * time.Minute
)

// RedisItemCache stores the serialized catalog under a single key with a
// short TTL. Cache failures are logged and treated as misses.
type RedisItemCache struct {
	client *redis.Client
}

func NewRedisItemCache(addr string, password string, db int) *RedisItemCache {
	return &RedisItemCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *RedisItemCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisItemCache) Close() error {
	return c.client.Close()
}

func (c *RedisItemCache) GetItems(ctx context.Context) ([]domain.Item, bool) {
	raw, err := c.client.Get(ctx, itemCatalogKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[cache] get %s: %v", itemCatalogKey, err)
		}
		return nil, false
	}

	var items []domain.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("[cache] decode %s: %v", itemCatalogKey, err)
		return nil, false
	}
	return items, true
}

func (c *RedisItemCache) SetItems(ctx context.Context, items []domain.Item) {
	raw, err := json.Marshal(items)
	if err != nil {
		log.Printf("[cache] encode %s: %v", itemCatalogKey, err)
		return
	}
	if err := c.client.Set(ctx, itemCatalogKey, raw, itemCatalogTTL).Err(); err != nil {
		log.Printf("[cache] set %s: %v", itemCatalogKey, err)
	}
}

func (c *RedisItemCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, itemCatalogKey).Err(); err != nil {
		log.Printf("[cache] del %s: %v", itemCatalogKey, err)
	}
}
