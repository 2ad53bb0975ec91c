package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the order repository inside its transactions.
const (
	TopicOrderCommitted = "order.committed"
	TopicOrderUpdated   = "order.updated"
	TopicOrderDiscarded = "order.discarded"
	TopicOrderSettled   = "order.settled"
	TopicOrdersCleared  = "orders.cleared"
)

// Topics lists every order topic, for subscribers that register in bulk.
func Topics() []string {
	return []string{TopicOrderCommitted, TopicOrderUpdated, TopicOrderDiscarded, TopicOrderSettled, TopicOrdersCleared}
}

// OrderEvent is the payload of every per-order topic.
type OrderEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	OrderID    string    `json:"order_id"`
	SlotKind   string    `json:"slot_kind"`
	SlotNumber int       `json:"slot_number"`
	Total      string    `json:"total"`
	ItemCount  int       `json:"item_count"`
	Paid       bool      `json:"paid"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrdersClearedEvent is published by the bulk clear.
type OrdersClearedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	OrderIDs   []string  `json:"order_ids"`
	OccurredAt time.Time `json:"occurred_at"`
}
