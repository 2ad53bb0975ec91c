// Package redis stores occupancy flags in a single Redis hash.
package redis

import (
	"context"
	"fmt"

	"github.com/ghuser/tablepos/pkg/cache"
	orderdomain "github.com/ghuser/tablepos/services/order/domain"
	"github.com/ghuser/tablepos/services/order/domain/models"
	"github.com/ghuser/tablepos/services/order/domain/repositories"
	domainsvcs "github.com/ghuser/tablepos/services/order/domain/services"
)

// DefaultKey is the hash holding every slot flag. Field format: "kind:number".
const DefaultKey = "order_status"

const (
	occupiedValue = "1"
	freeValue     = "0"
)

// OccupancyBackend implements repositories.OccupancyBackend with HSET/HGETALL.
type OccupancyBackend struct {
	client *cache.RedisClient
	key    string
}

var _ repositories.OccupancyBackend = (*OccupancyBackend)(nil)

// NewOccupancyBackend returns a backend writing to the DefaultKey hash.
func NewOccupancyBackend(client *cache.RedisClient) *OccupancyBackend {
	return &OccupancyBackend{client: client, key: DefaultKey}
}

// WithKey returns a copy writing to a different hash. Used by tests to avoid
// clobbering shared state.
func (b *OccupancyBackend) WithKey(key string) *OccupancyBackend {
	return &OccupancyBackend{client: b.client, key: key}
}

// Load returns every flag in the hash, sorted by slot.
func (b *OccupancyBackend) Load(ctx context.Context) ([]repositories.OccupancyRecord, error) {
	vals, err := b.client.Client().HGetAll(ctx, b.key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: hgetall %s: %w", orderdomain.ErrStorageFailure, b.key, err)
	}
	return decodeFlags(b.key, vals)
}

// decodeFlags turns the raw hash into records sorted by slot. A field that
// does not parse means the hash was written by something else, which is a
// storage fault rather than a bad order.
func decodeFlags(key string, vals map[string]string) ([]repositories.OccupancyRecord, error) {
	byslot := make(map[models.Slot]bool, len(vals))
	slots := make([]models.Slot, 0, len(vals))
	for field, v := range vals {
		slot, err := models.ParseSlot(field)
		if err != nil {
			return nil, fmt.Errorf("%w: %s field %q: %w", orderdomain.ErrStorageFailure, key, field, err)
		}
		switch v {
		case occupiedValue:
			byslot[slot] = true
		case freeValue:
			byslot[slot] = false
		default:
			return nil, fmt.Errorf("%w: %s field %q has value %q", orderdomain.ErrStorageFailure, key, field, v)
		}
		slots = append(slots, slot)
	}
	domainsvcs.SortSlots(slots)

	out := make([]repositories.OccupancyRecord, 0, len(slots))
	for _, s := range slots {
		out = append(out, repositories.OccupancyRecord{Slot: s, Occupied: byslot[s]})
	}
	return out, nil
}

// Upsert sets one field of the hash.
func (b *OccupancyBackend) Upsert(ctx context.Context, rec repositories.OccupancyRecord) error {
	v := freeValue
	if rec.Occupied {
		v = occupiedValue
	}
	if err := b.client.Client().HSet(ctx, b.key, rec.Slot.String(), v).Err(); err != nil {
		return fmt.Errorf("%w: hset %s %s: %w", orderdomain.ErrStorageFailure, b.key, rec.Slot, err)
	}
	return nil
}
