package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a saved order for one slot.
type Order struct {
	ID        string
	Slot      Slot
	Items     []LineItem
	Total     decimal.Decimal
	CreatedAt time.Time
	Paid      bool
}

// NewOrder builds an unpaid order from a builder snapshot.
func NewOrder(id string, slot Slot, snap Snapshot, createdAt time.Time) *Order {
	return &Order{
		ID:        id,
		Slot:      slot,
		Items:     snap.Items,
		Total:     snap.Total,
		CreatedAt: createdAt,
	}
}

// Active reports whether the order still holds its slot.
func (o *Order) Active() bool {
	return !o.Paid
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = make([]LineItem, len(o.Items))
	copy(c.Items, o.Items)
	return &c
}

// WithItems returns a copy carrying the snapshot's items and total. Id,
// slot and creation time are preserved.
func (o *Order) WithItems(snap Snapshot) *Order {
	c := o.Clone()
	c.Items = snap.Items
	c.Total = snap.Total
	return c
}

// Validate checks a record at the storage boundary: a present id and slot,
// well-formed items with unique menu entries, and a total equal to the sum
// of the items.
func (o *Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("order id must not be empty")
	}
	if _, err := NewSlot(o.Slot.Kind, o.Slot.Number); err != nil {
		return fmt.Errorf("order %s: %w", o.ID, err)
	}
	if o.CreatedAt.IsZero() {
		return fmt.Errorf("order %s: created_at must be set", o.ID)
	}
	seen := make(map[string]struct{}, len(o.Items))
	for _, li := range o.Items {
		if err := li.Validate(); err != nil {
			return fmt.Errorf("order %s: %w", o.ID, err)
		}
		if _, dup := seen[li.MenuEntryID]; dup {
			return fmt.Errorf("order %s: duplicate line for menu entry %s", o.ID, li.MenuEntryID)
		}
		seen[li.MenuEntryID] = struct{}{}
	}
	if sum := SumItems(o.Items); !sum.Equal(o.Total) {
		return fmt.Errorf("order %s: total %s does not match items sum %s", o.ID, o.Total, sum)
	}
	return nil
}
