package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ghuser/tablepos/pkg/logger"
	menudomain "github.com/ghuser/tablepos/services/menu/domain"
	"github.com/ghuser/tablepos/services/menu/domain/models"
	"github.com/ghuser/tablepos/services/menu/domain/repositories"
)

// Catalog is the read side the order core consumes plus the keyed-record
// maintenance operations behind it.
type Catalog struct {
	repo repositories.MenuRepository
	log  logger.Logger
}

// NewCatalog returns a Catalog over the given repository.
func NewCatalog(repo repositories.MenuRepository, log logger.Logger) *Catalog {
	return &Catalog{repo: repo, log: log}
}

// Lookup returns the entry for id or ErrMenuEntryNotFound.
func (c *Catalog) Lookup(ctx context.Context, id string) (models.MenuEntry, error) {
	e, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return models.MenuEntry{}, fmt.Errorf("lookup menu entry %s: %w", id, err)
	}
	return e, nil
}

// List returns the whole catalog.
func (c *Catalog) List(ctx context.Context) ([]models.MenuEntry, error) {
	entries, err := c.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return entries, nil
}

// ListByCategory returns the entries of one category. "all" disables the filter.
func (c *Catalog) ListByCategory(ctx context.Context, category string) ([]models.MenuEntry, error) {
	return c.Search(ctx, "", category)
}

// Search filters the catalog by a case-insensitive substring of id or name
// and by category. An empty category or "all" matches every category.
func (c *Catalog) Search(ctx context.Context, query, category string) ([]models.MenuEntry, error) {
	var want models.Category
	if category != "" && category != models.CategoryAll {
		parsed, err := models.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", menudomain.ErrInvalidMenuEntry, err)
		}
		want = parsed
	}

	entries, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.MenuEntry, 0, len(entries))
	for _, e := range entries {
		if want != "" && e.Category != want {
			continue
		}
		if !e.Matches(query) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Add validates and stores a new entry.
func (c *Catalog) Add(ctx context.Context, id, name string, unitPrice decimal.Decimal, category string) (models.MenuEntry, error) {
	cat, err := models.ParseCategory(category)
	if err != nil {
		return models.MenuEntry{}, fmt.Errorf("%w: %w", menudomain.ErrInvalidMenuEntry, err)
	}
	e, err := models.NewMenuEntry(id, name, unitPrice, cat)
	if err != nil {
		return models.MenuEntry{}, fmt.Errorf("%w: %w", menudomain.ErrInvalidMenuEntry, err)
	}
	if err := c.repo.Save(ctx, e); err != nil {
		return models.MenuEntry{}, fmt.Errorf("save menu entry: %w", err)
	}
	return e, nil
}

// Remove deletes an entry. Saved orders keep their denormalized copies.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove menu entry %s: %w", id, err)
	}
	return nil
}

// SeedDefaults loads DefaultMenu when the catalog is empty. Returns the
// number of entries inserted.
func (c *Catalog) SeedDefaults(ctx context.Context) (int, error) {
	n, err := c.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count menu: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	seeded := 0
	for _, e := range DefaultMenu() {
		if err := c.repo.Save(ctx, e); err != nil {
			return seeded, fmt.Errorf("seed menu entry %s: %w", e.ID, err)
		}
		seeded++
	}
	c.log.InfoContext(ctx, "menu catalog seeded", "entries", seeded)
	return seeded, nil
}
