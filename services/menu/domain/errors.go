package domain

import "errors"

// Sentinel errors for the menu domain. Use errors.Is() to check these.
var (
	// ErrMenuEntryNotFound indicates no menu entry exists for the requested id.
	ErrMenuEntryNotFound = errors.New("menu entry not found")

	// ErrMenuEntryAlreadyExists indicates an entry with the same id is already in the catalog.
	ErrMenuEntryAlreadyExists = errors.New("menu entry already exists")

	// ErrInvalidMenuEntry indicates the entry violates catalog constraints.
	ErrInvalidMenuEntry = errors.New("invalid menu entry")
)
