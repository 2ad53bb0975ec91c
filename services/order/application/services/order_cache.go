package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ghuser/tablepos/pkg/cache"
	"github.com/ghuser/tablepos/services/order/domain/models"
)

// OrderCache is the read-model cache in front of the order repository.
// Get returns redis.Nil on a miss.
type OrderCache interface {
	Get(ctx context.Context, orderID string) (*cache.CachedOrder, error)
	Set(ctx context.Context, o *cache.CachedOrder) error
	Delete(ctx context.Context, orderIDs ...string) error
}

const cacheWarmTimeout = 2 * time.Second

// GetOrder returns one saved order, reading through the cache when one is
// configured. A miss fills the cache only if no eviction ran since the
// repository read, so a concurrent edit or settle cannot be overwritten by
// the version read before it.
func (c *Controller) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var gen uint64
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, orderID)
		switch {
		case err == nil:
			o, err := FromCached(cached)
			if err == nil {
				return o, nil
			}
			c.log.WarnContext(ctx, "discarding malformed cache entry", "order_id", orderID, "error", err)
		case !errors.Is(err, redis.Nil):
			c.log.WarnContext(ctx, "order cache read failed", "order_id", orderID, "error", err)
		}
		gen = c.cacheGeneration()
	}

	o, err := c.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if c.cache != nil {
		c.fill(ctx, ToCached(o), gen)
	}
	return o, nil
}

func (c *Controller) cacheGeneration() uint64 {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	return c.cacheGen
}

// fill writes entry unless an eviction happened after generation gen was
// observed.
func (c *Controller) fill(ctx context.Context, entry *cache.CachedOrder, gen uint64) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	if c.cacheGen != gen {
		c.log.DebugContext(ctx, "order changed during read; cache fill skipped", "order_id", entry.ID)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheWarmTimeout)
	defer cancel()
	if err := c.cache.Set(ctx, entry); err != nil {
		c.log.WarnContext(ctx, "order cache warm failed", "order_id", entry.ID, "error", err)
	}
}

// evict drops cache entries after a write. Failures only cost a stale read
// until the entry expires.
func (c *Controller) evict(ctx context.Context, orderIDs ...string) {
	if c.cache == nil || len(orderIDs) == 0 {
		return
	}
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cacheGen++
	if err := c.cache.Delete(ctx, orderIDs...); err != nil {
		c.log.WarnContext(ctx, "order cache evict failed", "order_ids", orderIDs, "error", err)
	}
}

// ToCached flattens an order into its cache form.
func ToCached(o *models.Order) *cache.CachedOrder {
	items := make([]cache.CachedLineItem, len(o.Items))
	for i, li := range o.Items {
		items[i] = cache.CachedLineItem{
			MenuEntryID: li.MenuEntryID,
			Name:        li.Name,
			UnitPrice:   li.UnitPrice.String(),
			Quantity:    li.Quantity,
			Category:    li.Category,
		}
	}
	return &cache.CachedOrder{
		ID:         o.ID,
		SlotKind:   o.Slot.Kind.String(),
		SlotNumber: o.Slot.Number,
		Total:      o.Total.String(),
		Paid:       o.Paid,
		CreatedAt:  o.CreatedAt,
		Items:      items,
	}
}

// FromCached rebuilds and validates an order from its cache form.
func FromCached(co *cache.CachedOrder) (*models.Order, error) {
	kind, err := models.ParseKind(co.SlotKind)
	if err != nil {
		return nil, err
	}
	total, err := decimal.NewFromString(co.Total)
	if err != nil {
		return nil, fmt.Errorf("total: %w", err)
	}
	items := make([]models.LineItem, len(co.Items))
	for i, ci := range co.Items {
		price, err := decimal.NewFromString(ci.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("item %s price: %w", ci.MenuEntryID, err)
		}
		items[i] = models.LineItem{
			MenuEntryID: ci.MenuEntryID,
			Name:        ci.Name,
			UnitPrice:   price,
			Quantity:    ci.Quantity,
			Category:    ci.Category,
		}
	}
	o := &models.Order{
		ID:        co.ID,
		Slot:      models.Slot{Kind: kind, Number: co.SlotNumber},
		Items:     items,
		Total:     total,
		CreatedAt: co.CreatedAt,
		Paid:      co.Paid,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}
