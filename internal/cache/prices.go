package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stylefeed/inventory-importer/internal/config"
	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

const priceKeyPrefix = "feed:prices"

// PriceLoader supplies a source's current items on a cache miss. The
// inventory repository satisfies it.
type PriceLoader interface {
	ListBySource(ctx context.Context, sourceID string) ([]*domain.InventoryItem, error)
}

// PriceCache answers "what did this SKU last sell for" during price-based
// size expansion. Cache failures degrade to the loader, and loader failures
// degrade to "no price": expansion is best-effort.
type PriceCache interface {
	Price(ctx context.Context, sourceID, sku string) (float64, bool)
	Prime(ctx context.Context, sourceID string, items []*domain.InventoryItem) error
	Invalidate(ctx context.Context, sourceID string) error
}

type redisPriceCache struct {
	client *redis.Client
	ttl    time.Duration
	loader PriceLoader
}

type directPriceCache struct {
	loader PriceLoader
}

func NewPriceCache(cfg config.CacheConfig, loader PriceLoader) (PriceCache, error) {
	if !cfg.Enabled {
		return &directPriceCache{loader: loader}, nil
	}
	client, ttl, err := newRedisClient(cfg, cfg.PriceTTLSeconds)
	if err != nil {
		return nil, err
	}
	return &redisPriceCache{client: client, ttl: ttl, loader: loader}, nil
}

func priceKey(sourceID string) string {
	return fmt.Sprintf("%s:%s", priceKeyPrefix, sourceID)
}

func (c *redisPriceCache) Price(ctx context.Context, sourceID, sku string) (float64, bool) {
	raw, err := c.client.HGet(ctx, priceKey(sourceID), sku).Result()
	if err == nil {
		price, parseErr := strconv.ParseFloat(raw, 64)
		return price, parseErr == nil && price > 0
	}
	if err != redis.Nil {
		logger.Log.Warn().Err(err).Str("source_id", sourceID).Msg("price cache read failed")
		return lookupDirect(ctx, c.loader, sourceID, sku)
	}

	// Source hash missing or sku unseen: warm the whole source once.
	items, loadErr := c.loader.ListBySource(ctx, sourceID)
	if loadErr != nil {
		logger.Log.Warn().Err(loadErr).Str("source_id", sourceID).Msg("price cache warm failed")
		return 0, false
	}
	if err := c.Prime(ctx, sourceID, items); err != nil {
		logger.Log.Warn().Err(err).Str("source_id", sourceID).Msg("price cache prime failed")
	}
	for _, item := range items {
		if item.SKU == sku && item.Price != nil && *item.Price > 0 {
			return *item.Price, true
		}
	}
	return 0, false
}

// Prime stores every priced SKU of the source in one hash with a TTL.
func (c *redisPriceCache) Prime(ctx context.Context, sourceID string, items []*domain.InventoryItem) error {
	key := priceKey(sourceID)
	fields := make(map[string]any, len(items))
	for _, item := range items {
		if item.Price != nil && *item.Price > 0 {
			fields[item.SKU] = strconv.FormatFloat(*item.Price, 'f', 2, 64)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis prime failed: %w", err)
	}
	return nil
}

func (c *redisPriceCache) Invalidate(ctx context.Context, sourceID string) error {
	return c.client.Del(ctx, priceKey(sourceID)).Err()
}

func (c *directPriceCache) Price(ctx context.Context, sourceID, sku string) (float64, bool) {
	return lookupDirect(ctx, c.loader, sourceID, sku)
}

func (c *directPriceCache) Prime(context.Context, string, []*domain.InventoryItem) error {
	return nil
}

func (c *directPriceCache) Invalidate(context.Context, string) error {
	return nil
}

func lookupDirect(ctx context.Context, loader PriceLoader, sourceID, sku string) (float64, bool) {
	if loader == nil {
		return 0, false
	}
	items, err := loader.ListBySource(ctx, sourceID)
	if err != nil {
		logger.Log.Warn().Err(err).Str("source_id", sourceID).Msg("price lookup failed")
		return 0, false
	}
	for _, item := range items {
		if item.SKU == sku && item.Price != nil && *item.Price > 0 {
			return *item.Price, true
		}
	}
	return 0, false
}
