package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	menudomain "github.com/ghuser/tablepos/services/menu/domain"
	"github.com/ghuser/tablepos/services/menu/domain/models"
)

func entry(id, name, price string, c models.Category) models.MenuEntry {
	return models.MenuEntry{ID: id, Name: name, UnitPrice: decimal.RequireFromString(price), Category: c}
}

func TestMenuRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewMenuRepository()

	if err := r.Save(ctx, entry("F1", "Hamburger", "12.99", models.CategoryFood)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := r.GetByID(ctx, "F1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Hamburger" {
		t.Errorf("expected Hamburger, got %q", got.Name)
	}

	err = r.Save(ctx, entry("F1", "Other", "1.00", models.CategoryFood))
	if !errors.Is(err, menudomain.ErrMenuEntryAlreadyExists) {
		t.Fatalf("expected ErrMenuEntryAlreadyExists, got %v", err)
	}

	if _, err := r.GetByID(ctx, "nope"); !errors.Is(err, menudomain.ErrMenuEntryNotFound) {
		t.Fatalf("expected ErrMenuEntryNotFound, got %v", err)
	}
}

func TestMenuRepository_ListOrdering(t *testing.T) {
	ctx := context.Background()
	r := NewMenuRepository()
	for _, e := range []models.MenuEntry{
		entry("I1", "Butter Chicken", "15.99", models.CategoryIndian),
		entry("F2", "Cheeseburger", "13.99", models.CategoryFood),
		entry("D1", "Coca Cola", "2.50", models.CategoryDrinks),
		entry("F1", "Hamburger", "12.99", models.CategoryFood),
	} {
		if err := r.Save(ctx, e); err != nil {
			t.Fatalf("Save(%s): %v", e.ID, err)
		}
	}

	list, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"D1", "F1", "F2", "I1"}
	if len(list) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("position %d: want %s, got %s", i, id, list[i].ID)
		}
	}
}

func TestMenuRepository_Delete(t *testing.T) {
	ctx := context.Background()
	r := NewMenuRepository()
	_ = r.Save(ctx, entry("D1", "Coca Cola", "2.50", models.CategoryDrinks))

	if err := r.Delete(ctx, "D1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := r.Delete(ctx, "D1"); !errors.Is(err, menudomain.ErrMenuEntryNotFound) {
		t.Fatalf("expected ErrMenuEntryNotFound on second delete, got %v", err)
	}
	n, _ := r.Count(ctx)
	if n != 0 {
		t.Fatalf("expected empty repository, got %d", n)
	}
}
