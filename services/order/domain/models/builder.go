package models

import (
	"github.com/shopspring/decimal"

	menumodels "github.com/ghuser/tablepos/services/menu/domain/models"
)

// Builder accumulates the line items of one order before it is persisted.
// It keeps at most one line per menu entry, in insertion order, and keeps
// the running total in step with every mutation. Not safe for concurrent
// use; the lifecycle controller serializes access per session.
type Builder struct {
	items []LineItem
	index map[string]int
	total decimal.Decimal
}

// Snapshot is an immutable copy of a builder's contents.
type Snapshot struct {
	Items []LineItem
	Total decimal.Decimal
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int), total: decimal.Zero}
}

// NewBuilderFrom seeds a Builder with existing line items, as when a saved
// order is reopened. Lines for the same entry are merged.
func NewBuilderFrom(items []LineItem) *Builder {
	b := NewBuilder()
	for _, li := range items {
		if li.Quantity < 1 {
			continue
		}
		if i, ok := b.index[li.MenuEntryID]; ok {
			b.items[i].Quantity += li.Quantity
		} else {
			b.index[li.MenuEntryID] = len(b.items)
			b.items = append(b.items, li)
		}
		b.total = b.total.Add(li.Subtotal())
	}
	return b
}

// AddItem increments the quantity of an existing line for the entry or
// appends a new line with quantity 1.
func (b *Builder) AddItem(e menumodels.MenuEntry) {
	if i, ok := b.index[e.ID]; ok {
		b.items[i].Quantity++
		b.total = b.total.Add(b.items[i].UnitPrice)
		return
	}
	li := NewLineItem(e)
	b.index[e.ID] = len(b.items)
	b.items = append(b.items, li)
	b.total = b.total.Add(li.UnitPrice)
}

// ChangeQuantity applies delta to the line for menuEntryID. A resulting
// quantity of zero or less removes the line. Unknown ids are ignored.
func (b *Builder) ChangeQuantity(menuEntryID string, delta int) {
	i, ok := b.index[menuEntryID]
	if !ok || delta == 0 {
		return
	}
	li := &b.items[i]
	if li.Quantity+delta <= 0 {
		b.removeAt(i)
		return
	}
	li.Quantity += delta
	b.total = b.total.Add(li.UnitPrice.Mul(decimal.NewFromInt(int64(delta))))
}

// RemoveItem deletes the line for menuEntryID. Unknown ids are ignored.
func (b *Builder) RemoveItem(menuEntryID string) {
	if i, ok := b.index[menuEntryID]; ok {
		b.removeAt(i)
	}
}

func (b *Builder) removeAt(i int) {
	removed := b.items[i]
	b.total = b.total.Sub(removed.Subtotal())
	b.items = append(b.items[:i], b.items[i+1:]...)
	delete(b.index, removed.MenuEntryID)
	for j := i; j < len(b.items); j++ {
		b.index[b.items[j].MenuEntryID] = j
	}
}

// Total returns the running total.
func (b *Builder) Total() decimal.Decimal {
	return b.total
}

// Len returns the number of distinct lines.
func (b *Builder) Len() int {
	return len(b.items)
}

// Quantity returns the quantity for menuEntryID, or 0 if absent.
func (b *Builder) Quantity(menuEntryID string) int {
	if i, ok := b.index[menuEntryID]; ok {
		return b.items[i].Quantity
	}
	return 0
}

// Snapshot copies the current lines and total.
func (b *Builder) Snapshot() Snapshot {
	items := make([]LineItem, len(b.items))
	copy(items, b.items)
	return Snapshot{Items: items, Total: b.total}
}
