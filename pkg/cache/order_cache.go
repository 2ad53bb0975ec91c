package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// OrderCacheTTL is the time-to-live for cached orders.
	OrderCacheTTL = 24 * time.Hour

	orderCacheKeyPrefix = "order"
)

// CachedLineItem is one line of a cached order. Prices are decimal strings.
type CachedLineItem struct {
	MenuEntryID string `json:"menu_entry_id"`
	Name        string `json:"name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Category    string `json:"category"`
}

// CachedOrder is the denormalized read model stored in Redis as a hash.
// Items are kept as a JSON array in a single field.
type CachedOrder struct {
	ID         string           `json:"id"`
	SlotKind   string           `json:"slot_kind"`
	SlotNumber int              `json:"slot_number"`
	Total      string           `json:"total"`
	Paid       bool             `json:"paid"`
	CreatedAt  time.Time        `json:"created_at"`
	Items      []CachedLineItem `json:"items"`
}

// OrderCache provides structured read/write operations for order cache entries.
// Key format: "order:{orderID}"
type OrderCache struct {
	client *RedisClient
}

// NewOrderCache creates a new OrderCache backed by the given RedisClient.
func NewOrderCache(r *RedisClient) *OrderCache {
	return &OrderCache{client: r}
}

// Get retrieves a cached order by id.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *OrderCache) Get(ctx context.Context, orderID string) (*CachedOrder, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(orderID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}

	number, err := strconv.Atoi(vals["slot_number"])
	if err != nil {
		return nil, fmt.Errorf("cache parse slot_number: %w", err)
	}
	paid, err := strconv.ParseBool(vals["paid"])
	if err != nil {
		return nil, fmt.Errorf("cache parse paid: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}
	var items []CachedLineItem
	if err := json.Unmarshal([]byte(vals["items"]), &items); err != nil {
		return nil, fmt.Errorf("cache parse items: %w", err)
	}

	return &CachedOrder{
		ID:         vals["id"],
		SlotKind:   vals["slot_kind"],
		SlotNumber: number,
		Total:      vals["total"],
		Paid:       paid,
		CreatedAt:  createdAt,
		Items:      items,
	}, nil
}

// Set writes a cached order as a Redis hash with a 24-hour TTL.
// Uses a pipeline to set all fields and the TTL atomically.
func (c *OrderCache) Set(ctx context.Context, o *CachedOrder) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("cache marshal items: %w", err)
	}
	key := c.key(o.ID)
	pipe := c.client.Client().TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		"id", o.ID,
		"slot_kind", o.SlotKind,
		"slot_number", strconv.Itoa(o.SlotNumber),
		"total", o.Total,
		"paid", strconv.FormatBool(o.Paid),
		"created_at", o.CreatedAt.UTC().Format(time.RFC3339Nano),
		"items", string(items),
	)
	pipe.Expire(ctx, key, OrderCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes cached orders. Missing keys are ignored.
func (c *OrderCache) Delete(ctx context.Context, orderIDs ...string) error {
	if len(orderIDs) == 0 {
		return nil
	}
	keys := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		keys[i] = c.key(id)
	}
	if err := c.client.Client().Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "order:{orderID}"
func (c *OrderCache) key(orderID string) string {
	return orderCacheKeyPrefix + ":" + orderID
}
