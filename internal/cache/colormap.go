package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stylefeed/inventory-importer/internal/config"
	"github.com/stylefeed/inventory-importer/internal/domain"
)

const colorMapKey = "feed:colormap"

// ColorMapLoader supplies the global mapping table on a cache miss. The
// color-map repository satisfies it.
type ColorMapLoader interface {
	All(ctx context.Context) ([]*domain.ColorMapping, error)
}

// ColorMapCache is a read-through view of the global color mapping table,
// keyed by upper-cased bad color.
type ColorMapCache interface {
	Mappings(ctx context.Context) (map[string]string, error)
	Invalidate(ctx context.Context) error
}

type redisColorMapCache struct {
	client *redis.Client
	ttl    time.Duration
	loader ColorMapLoader
}

type directColorMapCache struct {
	loader ColorMapLoader
}

func NewColorMapCache(cfg config.CacheConfig, loader ColorMapLoader) (ColorMapCache, error) {
	if !cfg.Enabled {
		return &directColorMapCache{loader: loader}, nil
	}
	client, ttl, err := newRedisClient(cfg, cfg.ColorMapTTLSecond)
	if err != nil {
		return nil, err
	}
	return &redisColorMapCache{client: client, ttl: ttl, loader: loader}, nil
}

func (c *redisColorMapCache) Mappings(ctx context.Context) (map[string]string, error) {
	payload, err := c.client.Get(ctx, colorMapKey).Bytes()
	if err == nil {
		var mappings map[string]string
		if err := json.Unmarshal(payload, &mappings); err != nil {
			return nil, fmt.Errorf("decode color map cache: %w", err)
		}
		return mappings, nil
	}
	if err != redis.Nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	mappings, err := loadMappings(ctx, c.loader)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(mappings)
	if err != nil {
		return nil, fmt.Errorf("encode color map cache: %w", err)
	}
	if err := c.client.Set(ctx, colorMapKey, encoded, c.ttl).Err(); err != nil {
		return nil, fmt.Errorf("redis set failed: %w", err)
	}
	return mappings, nil
}

func (c *redisColorMapCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, colorMapKey).Err()
}

func (c *directColorMapCache) Mappings(ctx context.Context) (map[string]string, error) {
	return loadMappings(ctx, c.loader)
}

func (c *directColorMapCache) Invalidate(context.Context) error {
	return nil
}

func loadMappings(ctx context.Context, loader ColorMapLoader) (map[string]string, error) {
	rows, err := loader.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load color mappings: %w", err)
	}
	mappings := make(map[string]string, len(rows))
	for _, row := range rows {
		mappings[strings.ToUpper(strings.TrimSpace(row.BadColor))] = row.GoodColor
	}
	return mappings, nil
}
