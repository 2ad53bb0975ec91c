package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	menumodels "github.com/ghuser/tablepos/services/menu/domain/models"
)

// LineItem is a denormalized copy of a menu entry plus a quantity.
// Later catalog price changes do not reach existing line items.
type LineItem struct {
	MenuEntryID string
	Name        string
	UnitPrice   decimal.Decimal
	Quantity    int
	Category    string
}

// NewLineItem copies the entry's fields with quantity 1.
func NewLineItem(e menumodels.MenuEntry) LineItem {
	return LineItem{
		MenuEntryID: e.ID,
		Name:        e.Name,
		UnitPrice:   e.UnitPrice,
		Quantity:    1,
		Category:    e.Category.String(),
	}
}

// Subtotal is UnitPrice * Quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Validate checks a line item loaded from storage.
func (li LineItem) Validate() error {
	if li.MenuEntryID == "" {
		return fmt.Errorf("line item menu entry id must not be empty")
	}
	if li.Name == "" {
		return fmt.Errorf("line item %s: name must not be empty", li.MenuEntryID)
	}
	if li.UnitPrice.IsNegative() {
		return fmt.Errorf("line item %s: unit price must not be negative", li.MenuEntryID)
	}
	if li.Quantity < 1 {
		return fmt.Errorf("line item %s: quantity must be at least 1, got %d", li.MenuEntryID, li.Quantity)
	}
	return nil
}

// SumItems returns the sum of every item's subtotal.
func SumItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Subtotal())
	}
	return total
}
