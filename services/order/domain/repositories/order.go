package repositories

import (
	"context"

	"github.com/ghuser/tablepos/services/order/domain/models"
)

// OrderRepository is the durable collection of saved orders. Every method is
// atomic from the caller's point of view; I/O faults are returned wrapped in
// ErrStorageFailure.
type OrderRepository interface {
	// ListAll returns every order, most recent createdAt first.
	ListAll(ctx context.Context) ([]*models.Order, error)

	// FindByID returns ErrOrderNotFound when absent.
	FindByID(ctx context.Context, id string) (*models.Order, error)

	// Append stores a new order. Returns ErrDuplicateID if the id is taken.
	Append(ctx context.Context, order *models.Order) error

	// Replace overwrites an existing order by id. Returns ErrOrderNotFound if absent.
	Replace(ctx context.Context, order *models.Order) error

	// Remove deletes an order by id. Returns ErrOrderNotFound if absent.
	Remove(ctx context.Context, id string) error

	// Clear deletes every order and returns the removed ids.
	Clear(ctx context.Context) ([]string, error)
}

// OccupancyRecord is one persisted slot flag.
type OccupancyRecord struct {
	Slot     models.Slot
	Occupied bool
}

// OccupancyBackend is the durable layer beneath the occupancy store.
type OccupancyBackend interface {
	// Load returns every stored record.
	Load(ctx context.Context) ([]OccupancyRecord, error)

	// Upsert inserts or updates the record for rec.Slot.
	Upsert(ctx context.Context, rec OccupancyRecord) error
}
