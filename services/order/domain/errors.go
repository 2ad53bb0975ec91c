package domain

import "errors"

// Sentinel errors for the order domain. Use errors.Is() to check these.
var (
	// ErrSlotOccupied indicates the slot already has an unpaid order.
	ErrSlotOccupied = errors.New("slot is occupied")

	// ErrEmptyOrder indicates a new order was committed without line items.
	ErrEmptyOrder = errors.New("order has no items")

	// ErrDuplicateID indicates an order with the same id is already stored.
	ErrDuplicateID = errors.New("order id already exists")

	// ErrOrderNotFound indicates no stored order matches the requested id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrStorageFailure wraps any I/O fault from the durable stores.
	ErrStorageFailure = errors.New("storage failure")

	// ErrConsistency indicates occupancy and the unpaid orders disagree.
	ErrConsistency = errors.New("occupancy disagrees with stored orders")

	// ErrInvalidSlot indicates a slot kind or number outside the configured range.
	ErrInvalidSlot = errors.New("invalid slot")

	// ErrUnknownMenuEntry indicates the menu entry id is not in the catalog.
	ErrUnknownMenuEntry = errors.New("unknown menu entry")

	// ErrSessionNotFound indicates no building session is open for the slot.
	ErrSessionNotFound = errors.New("no open session for slot")

	// ErrSessionBusy indicates a commit is in flight for the session.
	ErrSessionBusy = errors.New("session has a pending commit")

	// ErrOrderSettled indicates the order is paid and can no longer be edited.
	ErrOrderSettled = errors.New("order is already settled")

	// ErrInvalidOrder indicates a stored record failed validation on load.
	ErrInvalidOrder = errors.New("invalid order record")
)
