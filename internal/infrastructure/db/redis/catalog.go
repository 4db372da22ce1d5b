package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fotf/subscription-system/internal/core/domain"
)

const (
	catalogKey = "catalog:products"
	catalogTTL = 5 * time.Minute
)

// CatalogCache caches the full product listing in Redis. Entries expire after
// catalogTTL and are invalidated on catalog writes.
type CatalogCache struct {
	client *redis.Client
}

// NewCatalogCache creates a CatalogCache wrapping the given Redis client.
func NewCatalogCache(client *redis.Client) *CatalogCache {
	return &CatalogCache{client: client}
}

// Get returns the cached listing, or (nil, nil) on a cache miss.
func (c *CatalogCache) Get(ctx context.Context) ([]*domain.Product, error) {
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog cache get: %w", err)
	}

	var products []*domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("catalog cache decode: %w", err)
	}
	return products, nil
}

// Set stores the listing with the cache TTL.
func (c *CatalogCache) Set(ctx context.Context, products []*domain.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("catalog cache encode: %w", err)
	}
	return c.client.Set(ctx, catalogKey, raw, catalogTTL).Err()
}

// Invalidate drops the cached listing.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, catalogKey).Err()
}
