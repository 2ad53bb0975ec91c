package models

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validOrder() *Order {
	b := NewBuilder()
	b.AddItem(burger)
	b.AddItem(fries)
	return NewOrder("1718000000000000", Slot{Kind: KindDineIn, Number: 3}, b.Snapshot(), time.Unix(1718000000, 0).UTC())
}

func TestOrder_Validate(t *testing.T) {
	if err := validOrder().Validate(); err != nil {
		t.Fatalf("valid order rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(o *Order)
		wantMsg string
	}{
		{"missing id", func(o *Order) { o.ID = "" }, "id"},
		{"bad kind", func(o *Order) { o.Slot.Kind = "bar" }, "kind"},
		{"bad slot number", func(o *Order) { o.Slot.Number = 0 }, "positive"},
		{"zero created_at", func(o *Order) { o.CreatedAt = time.Time{} }, "created_at"},
		{"zero quantity", func(o *Order) { o.Items[0].Quantity = 0 }, "quantity"},
		{"duplicate line", func(o *Order) { o.Items[1] = o.Items[0]; o.Total = SumItems(o.Items) }, "duplicate"},
		{"total drift", func(o *Order) { o.Total = o.Total.Add(decimal.NewFromInt(1)) }, "total"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOrder()
			tt.mutate(o)
			err := o.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestOrder_EmptyOrderIsValid(t *testing.T) {
	o := NewOrder("1", Slot{Kind: KindTakeaway, Number: 1}, NewBuilder().Snapshot(), time.Now())
	if err := o.Validate(); err != nil {
		t.Fatalf("an edited-down empty order must load: %v", err)
	}
}

func TestOrder_CloneAndWithItems(t *testing.T) {
	o := validOrder()
	c := o.Clone()
	c.Items[0].Quantity = 10
	if o.Items[0].Quantity != 1 {
		t.Fatal("Clone shares the items slice")
	}

	b := NewBuilderFrom(o.Items)
	b.RemoveItem("F3")
	edited := o.WithItems(b.Snapshot())
	if edited.ID != o.ID || !edited.CreatedAt.Equal(o.CreatedAt) || edited.Slot != o.Slot {
		t.Fatal("WithItems must preserve identity fields")
	}
	if len(edited.Items) != 1 || !edited.Total.Equal(burger.UnitPrice) {
		t.Fatalf("unexpected edited order: %+v", edited)
	}
	if len(o.Items) != 2 {
		t.Fatal("WithItems mutated the original")
	}
}
