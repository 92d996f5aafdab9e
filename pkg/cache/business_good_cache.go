package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// BusinessGoodCacheTTL is the time-to-live for cached menu goods.
	BusinessGoodCacheTTL = 24 * time.Hour

	businessGoodCacheKeyPrefix = "business_good"
)

// CachedBusinessGood is the denormalized menu read model stored in Redis:
// the derived cost/allergen projection clients read far more often than they
// write. Prices travel as decimal strings to avoid float drift.
type CachedBusinessGood struct {
	ID           uuid.UUID `json:"id"`
	BusinessID   uuid.UUID `json:"business_id"`
	Name         string    `json:"name"`
	SellingPrice string    `json:"selling_price"`
	CostPrice    string    `json:"cost_price"`
	Allergens    []string  `json:"allergens"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BusinessGoodCache provides structured read/write operations for menu cache
// entries. Keys are scoped by business to prevent cross-tenant data leakage.
// Key format: "business_good:{businessID}:{goodID}"
type BusinessGoodCache struct {
	client *RedisClient
}

// NewBusinessGoodCache creates a BusinessGoodCache backed by the given RedisClient.
func NewBusinessGoodCache(r *RedisClient) *BusinessGoodCache {
	return &BusinessGoodCache{client: r}
}

// Get retrieves a cached good by business + good ID.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *BusinessGoodCache) Get(ctx context.Context, businessID, goodID uuid.UUID) (*CachedBusinessGood, error) {
	key := c.key(businessID, goodID)
	vals, err := c.client.Client().HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil // key not found
	}

	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	bid, err := uuid.Parse(vals["business_id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse business_id: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}

	var allergens []string
	if vals["allergens"] != "" {
		allergens = strings.Split(vals["allergens"], ",")
	}

	return &CachedBusinessGood{
		ID:           id,
		BusinessID:   bid,
		Name:         vals["name"],
		SellingPrice: vals["selling_price"],
		CostPrice:    vals["cost_price"],
		Allergens:    allergens,
		UpdatedAt:    updatedAt,
	}, nil
}

// Set writes a cached good as a Redis hash with a 24-hour TTL.
// Uses a pipeline to set all fields and the TTL atomically.
func (c *BusinessGoodCache) Set(ctx context.Context, good *CachedBusinessGood) error {
	key := c.key(good.BusinessID, good.ID)
	pipe := c.client.Client().Pipeline()
	pipe.HSet(ctx, key,
		"id", good.ID.String(),
		"business_id", good.BusinessID.String(),
		"name", good.Name,
		"selling_price", good.SellingPrice,
		"cost_price", good.CostPrice,
		"allergens", strings.Join(good.Allergens, ","),
		"updated_at", good.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, BusinessGoodCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached good.
func (c *BusinessGoodCache) Delete(ctx context.Context, businessID, goodID uuid.UUID) error {
	if err := c.client.Client().Del(ctx, c.key(businessID, goodID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "business_good:{businessID}:{goodID}"
func (c *BusinessGoodCache) key(businessID, goodID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", businessGoodCacheKeyPrefix, businessID, goodID)
}
