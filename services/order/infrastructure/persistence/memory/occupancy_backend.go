package memory

import (
	"context"
	"sync"

	"github.com/ghuser/tablepos/services/order/domain/models"
	"github.com/ghuser/tablepos/services/order/domain/repositories"
	domainsvcs "github.com/ghuser/tablepos/services/order/domain/services"
)

// OccupancyBackend implements repositories.OccupancyBackend with a map.
// FailNext makes the next Upsert return the given error, which lets tests
// drive the store's failure paths.
type OccupancyBackend struct {
	mu       sync.Mutex
	records  map[models.Slot]bool
	failNext error
}

var _ repositories.OccupancyBackend = (*OccupancyBackend)(nil)

// NewOccupancyBackend returns an empty OccupancyBackend.
func NewOccupancyBackend() *OccupancyBackend {
	return &OccupancyBackend{records: make(map[models.Slot]bool)}
}

func (b *OccupancyBackend) Load(_ context.Context) ([]repositories.OccupancyRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	slots := make([]models.Slot, 0, len(b.records))
	for s := range b.records {
		slots = append(slots, s)
	}
	domainsvcs.SortSlots(slots)

	out := make([]repositories.OccupancyRecord, 0, len(slots))
	for _, s := range slots {
		out = append(out, repositories.OccupancyRecord{Slot: s, Occupied: b.records[s]})
	}
	return out, nil
}

func (b *OccupancyBackend) Upsert(_ context.Context, rec repositories.OccupancyRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.failNext; err != nil {
		b.failNext = nil
		return err
	}
	b.records[rec.Slot] = rec.Occupied
	return nil
}

// FailNext arms a one-shot Upsert failure.
func (b *OccupancyBackend) FailNext(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = err
}
