// Package memory holds the process-local menu store used by the memory
// storage backend and by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	menudomain "github.com/ghuser/tablepos/services/menu/domain"
	"github.com/ghuser/tablepos/services/menu/domain/models"
)

// MenuRepository implements repositories.MenuRepository with a map.
type MenuRepository struct {
	mu      sync.RWMutex
	entries map[string]models.MenuEntry
}

// NewMenuRepository returns an empty MenuRepository.
func NewMenuRepository() *MenuRepository {
	return &MenuRepository{entries: make(map[string]models.MenuEntry)}
}

func (r *MenuRepository) List(_ context.Context) ([]models.MenuEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.MenuEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}

func (r *MenuRepository) GetByID(_ context.Context, id string) (models.MenuEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return models.MenuEntry{}, menudomain.ErrMenuEntryNotFound
	}
	return e, nil
}

func (r *MenuRepository) Save(_ context.Context, entry models.MenuEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[entry.ID]; ok {
		return menudomain.ErrMenuEntryAlreadyExists
	}
	r.entries[entry.ID] = entry
	return nil
}

func (r *MenuRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return menudomain.ErrMenuEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *MenuRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries), nil
}

// sortEntries orders by category display order, then id.
func sortEntries(entries []models.MenuEntry) {
	rank := make(map[models.Category]int)
	for i, c := range models.Categories() {
		rank[c] = i
	}
	sort.Slice(entries, func(i, j int) bool {
		ri, rj := rank[entries[i].Category], rank[entries[j].Category]
		if ri != rj {
			return ri < rj
		}
		return entries[i].ID < entries[j].ID
	})
}
