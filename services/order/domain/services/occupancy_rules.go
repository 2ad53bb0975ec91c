// Package services contains stateless domain services for the order bounded
// context. They operate purely on domain types and have no dependencies
// beyond the domain layer.
package services

import (
	"fmt"
	"sort"

	orderdomain "github.com/ghuser/tablepos/services/order/domain"
	"github.com/ghuser/tablepos/services/order/domain/models"
)

// ValidateForCommit enforces the commit rules on a builder snapshot. New
// orders must carry at least one line; edits of a saved order may be empty.
func ValidateForCommit(snap models.Snapshot, editing bool) error {
	if !editing && len(snap.Items) == 0 {
		return orderdomain.ErrEmptyOrder
	}
	if sum := models.SumItems(snap.Items); !sum.Equal(snap.Total) {
		return fmt.Errorf("snapshot total %s does not match items sum %s", snap.Total, sum)
	}
	return nil
}

// ActiveBySlot indexes unpaid orders by slot. When several unpaid orders
// share a slot the most recent one wins.
func ActiveBySlot(orders []*models.Order) map[models.Slot]*models.Order {
	out := make(map[models.Slot]*models.Order)
	for _, o := range orders {
		if !o.Active() {
			continue
		}
		if cur, ok := out[o.Slot]; ok && !NewerThan(o, cur) {
			continue
		}
		out[o.Slot] = o
	}
	return out
}

// OccupancyDiff compares stored flags against the unpaid orders and returns
// the slots whose flag must be raised and the slots whose flag must be
// released. Orders are authoritative. Both results are sorted.
func OccupancyDiff(occupied map[models.Slot]bool, active map[models.Slot]*models.Order) (raise, release []models.Slot) {
	for slot := range active {
		if !occupied[slot] {
			raise = append(raise, slot)
		}
	}
	for slot, isOccupied := range occupied {
		if _, ok := active[slot]; isOccupied && !ok {
			release = append(release, slot)
		}
	}
	SortSlots(raise)
	SortSlots(release)
	return raise, release
}

// SortSlots orders slots by kind, then number.
func SortSlots(slots []models.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Kind != slots[j].Kind {
			return slots[i].Kind < slots[j].Kind
		}
		return slots[i].Number < slots[j].Number
	})
}

// NewerThan reports whether a sorts before b in most-recent-first order:
// later createdAt first, ties broken by the larger id.
func NewerThan(a, b *models.Order) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if len(a.ID) != len(b.ID) {
		return len(a.ID) > len(b.ID)
	}
	return a.ID > b.ID
}

// SortByRecency sorts orders most recent first.
func SortByRecency(orders []*models.Order) {
	sort.SliceStable(orders, func(i, j int) bool { return NewerThan(orders[i], orders[j]) })
}
