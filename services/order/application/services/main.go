package services

import (
	"fmt"

	"github.com/ghuser/tablepos/pkg/app"
	"github.com/ghuser/tablepos/pkg/cache"
	"github.com/ghuser/tablepos/pkg/config"
	"github.com/ghuser/tablepos/services/order/domain/repositories"
	"github.com/ghuser/tablepos/services/order/infrastructure/persistence/memory"
	"github.com/ghuser/tablepos/services/order/infrastructure/persistence/postgres"
	orderredis "github.com/ghuser/tablepos/services/order/infrastructure/persistence/redis"
)

// Services is the application-layer service container for the order context.
type Services struct {
	Controller *Controller
	Occupancy  *OccupancyStore
}

// New wires the lifecycle controller with the backends selected in cfg.
// menu is the catalog the controller resolves menu entry ids against.
func New(a *app.Application, cfg *config.Config, menu MenuCatalog) (*Services, error) {
	var repo repositories.OrderRepository
	switch {
	case cfg.StorageBackend == config.BackendMemory:
		repo = memory.NewOrderRepository()
	case a.Db != nil:
		repo = postgres.NewOrderRepository(a.Db, a.EventBus)
	default:
		return nil, fmt.Errorf("storage backend %q needs a database", cfg.StorageBackend)
	}

	var backend repositories.OccupancyBackend
	switch cfg.OccupancyBackend {
	case config.BackendMemory:
		backend = memory.NewOccupancyBackend()
	case config.BackendRedis:
		if a.Redis == nil {
			return nil, fmt.Errorf("occupancy backend redis needs a redis client")
		}
		backend = orderredis.NewOccupancyBackend(a.Redis)
	default:
		if a.Db == nil {
			return nil, fmt.Errorf("occupancy backend %q needs a database", cfg.OccupancyBackend)
		}
		backend = postgres.NewOccupancyBackend(a.Db)
	}

	var orderCache OrderCache
	if a.Redis != nil {
		orderCache = cache.NewOrderCache(a.Redis)
	}

	occ := NewOccupancyStore(backend)
	ctrl := NewController(Deps{
		Orders:    repo,
		Occupancy: occ,
		Menu:      menu,
		Cache:     orderCache,
		Metrics:   a.Metrics,
		Logger:    a.Logger,
		Limits: Limits{
			DineInTables:  cfg.DineInTables,
			TakeawaySlots: cfg.TakeawaySlots,
		},
	})
	return &Services{Controller: ctrl, Occupancy: occ}, nil
}
