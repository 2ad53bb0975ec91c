package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	all := []error{
		ErrSlotOccupied, ErrEmptyOrder, ErrDuplicateID, ErrOrderNotFound,
		ErrStorageFailure, ErrConsistency, ErrInvalidSlot, ErrUnknownMenuEntry,
		ErrSessionNotFound, ErrSessionBusy, ErrOrderSettled, ErrInvalidOrder,
	}
	for i, a := range all {
		if a == nil {
			t.Fatalf("sentinel %d is nil", i)
		}
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%q must not match %q", a, b)
			}
		}
	}
}

func TestStorageFailure_WrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("%w: append order: %w", ErrStorageFailure, cause)

	if !errors.Is(err, ErrStorageFailure) {
		t.Error("expected ErrStorageFailure to match")
	}
	if !errors.Is(err, cause) {
		t.Error("expected underlying cause to match")
	}
}
