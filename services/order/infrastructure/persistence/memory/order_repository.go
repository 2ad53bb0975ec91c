// Package memory holds process-local order and occupancy stores used by the
// memory storage backend and by tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	orderdomain "github.com/ghuser/tablepos/services/order/domain"
	"github.com/ghuser/tablepos/services/order/domain/models"
	"github.com/ghuser/tablepos/services/order/domain/repositories"
	domainsvcs "github.com/ghuser/tablepos/services/order/domain/services"
)

// OrderRepository implements repositories.OrderRepository with a map.
// Stored orders are cloned on the way in and out.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository returns an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*models.Order)}
}

func (r *OrderRepository) ListAll(_ context.Context) ([]*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o.Clone())
	}
	domainsvcs.SortByRecency(out)
	return out, nil
}

func (r *OrderRepository) FindByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, orderdomain.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (r *OrderRepository) Append(_ context.Context, order *models.Order) error {
	if err := order.Validate(); err != nil {
		return fmt.Errorf("%w: %w", orderdomain.ErrInvalidOrder, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return orderdomain.ErrDuplicateID
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepository) Replace(_ context.Context, order *models.Order) error {
	if err := order.Validate(); err != nil {
		return fmt.Errorf("%w: %w", orderdomain.ErrInvalidOrder, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; !ok {
		return orderdomain.ErrOrderNotFound
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return orderdomain.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *OrderRepository) Clear(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.orders))
	for id := range r.orders {
		ids = append(ids, id)
	}
	r.orders = make(map[string]*models.Order)
	return ids, nil
}
