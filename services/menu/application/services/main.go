package services

import (
	"github.com/ghuser/tablepos/pkg/app"
	"github.com/ghuser/tablepos/pkg/config"
	"github.com/ghuser/tablepos/services/menu/domain/repositories"
	"github.com/ghuser/tablepos/services/menu/infrastructure/persistence/memory"
	"github.com/ghuser/tablepos/services/menu/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the menu context.
type Services struct {
	Catalog *Catalog
}

// New wires the catalog with the storage backend selected in cfg.
func New(a *app.Application, cfg *config.Config) *Services {
	var repo repositories.MenuRepository
	if cfg.StorageBackend == config.BackendMemory || a.Db == nil {
		repo = memory.NewMenuRepository()
	} else {
		repo = postgres.NewMenuRepository(a.Db)
	}
	return &Services{Catalog: NewCatalog(repo, a.Logger)}
}
