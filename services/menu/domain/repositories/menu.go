package repositories

import (
	"context"

	"github.com/ghuser/tablepos/services/menu/domain/models"
)

// MenuRepository is the keyed-record store behind the menu catalog.
// The domain layer owns this interface; infrastructure implements it.
type MenuRepository interface {
	// List returns every entry ordered by category, then id.
	List(ctx context.Context) ([]models.MenuEntry, error)

	// GetByID returns ErrMenuEntryNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (models.MenuEntry, error)

	// Save inserts a new entry. Returns ErrMenuEntryAlreadyExists on duplicate ids.
	Save(ctx context.Context, entry models.MenuEntry) error

	// Delete removes an entry. Returns ErrMenuEntryNotFound when the id is unknown.
	Delete(ctx context.Context, id string) error

	Count(ctx context.Context) (int, error)
}
