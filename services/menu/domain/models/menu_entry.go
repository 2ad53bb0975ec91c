package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category groups menu entries for filtering.
type Category string

const (
	CategoryDrinks    Category = "drinks"
	CategoryFood      Category = "food"
	CategoryCocktails Category = "cocktails"
	CategoryIndian    Category = "indian"
)

// CategoryAll is the filter value meaning "no category filter".
const CategoryAll = "all"

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{CategoryDrinks, CategoryFood, CategoryCocktails, CategoryIndian}
}

// ParseCategory returns the Category for s or an error if s is unknown.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// String returns the underlying string value.
func (c Category) String() string {
	return string(c)
}

const maxMenuEntryNameLength = 255

// MenuEntry is immutable catalog reference data.
type MenuEntry struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Category  Category
}

// NewMenuEntry constructs a valid MenuEntry or returns an error describing the
// first violated constraint.
func NewMenuEntry(id, name string, unitPrice decimal.Decimal, category Category) (MenuEntry, error) {
	e := MenuEntry{
		ID:        strings.TrimSpace(id),
		Name:      strings.TrimSpace(name),
		UnitPrice: unitPrice,
		Category:  category,
	}
	if err := e.Validate(); err != nil {
		return MenuEntry{}, err
	}
	return e, nil
}

// Validate checks the structural constraints of a catalog entry.
func (e MenuEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("menu entry id must not be empty")
	}
	if e.Name == "" {
		return fmt.Errorf("menu entry name must not be empty")
	}
	if len(e.Name) > maxMenuEntryNameLength {
		return fmt.Errorf("menu entry name must not exceed %d characters", maxMenuEntryNameLength)
	}
	if e.UnitPrice.IsNegative() {
		return fmt.Errorf("menu entry price must not be negative")
	}
	if _, err := ParseCategory(string(e.Category)); err != nil {
		return err
	}
	return nil
}

// Matches reports whether query is a case-insensitive substring of the
// entry's id or name. An empty query matches everything.
func (e MenuEntry) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.ID), q) || strings.Contains(strings.ToLower(e.Name), q)
}
