package services

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghuser/tablepos/services/order/domain/models"
)

// session is one order-building interaction for a slot. A session is either
// building a new order or editing a saved one (editing != nil).
type session struct {
	mu      sync.Mutex
	slot    models.Slot
	builder *models.Builder
	editing *models.Order
	pending bool
	closed  bool

	// Set when a new order was appended but the occupancy write failed; the
	// retry replaces this record instead of appending a second one.
	writtenID string
	writtenAt time.Time
}

func newSession(slot models.Slot) *session {
	return &session{slot: slot, builder: models.NewBuilder()}
}

func newEditSession(o *models.Order) *session {
	return &session{slot: o.Slot, builder: models.NewBuilderFrom(o.Items), editing: o.Clone()}
}

// orderID returns the id of the stored order this session writes to, if any.
func (s *session) orderID() string {
	if s.editing != nil {
		return s.editing.ID
	}
	return s.writtenID
}

// SessionView is a read-only copy of a session's state.
type SessionView struct {
	Slot    models.Slot
	OrderID string
	Editing bool
	Pending bool
	Items   []models.LineItem
	Total   decimal.Decimal
}

// view must be called with s.mu held.
func (s *session) view() SessionView {
	snap := s.builder.Snapshot()
	return SessionView{
		Slot:    s.slot,
		OrderID: s.orderID(),
		Editing: s.editing != nil,
		Pending: s.pending,
		Items:   snap.Items,
		Total:   snap.Total,
	}
}
