package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the tagged variant of a slot: a dine-in table or a takeaway number.
type Kind string

const (
	KindDineIn   Kind = "dine-in"
	KindTakeaway Kind = "takeaway"
)

// Kinds lists both slot kinds.
func Kinds() []Kind {
	return []Kind{KindDineIn, KindTakeaway}
}

// ParseKind accepts "dine-in" and "takeaway" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindDineIn:
		return KindDineIn, nil
	case KindTakeaway:
		return KindTakeaway, nil
	}
	return "", fmt.Errorf("unknown slot kind %q", s)
}

func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindDineIn || k == KindTakeaway
}

// Slot identifies one table or takeaway number.
type Slot struct {
	Kind   Kind
	Number int
}

// NewSlot builds a slot from its parts. Range checks against configured
// limits happen in the lifecycle controller.
func NewSlot(kind Kind, number int) (Slot, error) {
	if !kind.Valid() {
		return Slot{}, fmt.Errorf("unknown slot kind %q", kind)
	}
	if number < 1 {
		return Slot{}, fmt.Errorf("slot number must be positive, got %d", number)
	}
	return Slot{Kind: kind, Number: number}, nil
}

// String renders the slot as "kind:number", the key used by the stores.
func (s Slot) String() string {
	return s.Kind.String() + ":" + strconv.Itoa(s.Number)
}

// ParseSlot is the inverse of Slot.String.
func ParseSlot(s string) (Slot, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return Slot{}, fmt.Errorf("malformed slot key %q", s)
	}
	kind, err := ParseKind(s[:i])
	if err != nil {
		return Slot{}, err
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return Slot{}, fmt.Errorf("malformed slot number in %q: %w", s, err)
	}
	return NewSlot(kind, n)
}
