package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	orderdomain "github.com/ghuser/tablepos/services/order/domain"
	"github.com/ghuser/tablepos/services/order/domain/models"
	"github.com/ghuser/tablepos/services/order/domain/repositories"
)

// OccupancyStore is the in-memory view of slot flags over a durable backend.
// It is a derived cache: the order repository is authoritative and the
// lifecycle controller reconciles the two.
type OccupancyStore struct {
	mu      sync.RWMutex
	backend repositories.OccupancyBackend
	flags   map[models.Slot]bool
	// writeMu serializes backend writes so the view never applies them out
	// of order.
	writeMu sync.Mutex
}

// NewOccupancyStore returns a store with an empty view. Call Init to load
// persisted flags.
func NewOccupancyStore(backend repositories.OccupancyBackend) *OccupancyStore {
	return &OccupancyStore{backend: backend, flags: make(map[models.Slot]bool)}
}

// Init replaces the view with the backend's records.
func (s *OccupancyStore) Init(ctx context.Context) error {
	recs, err := s.backend.Load(ctx)
	if err != nil {
		return wrapStorage("load occupancy", err)
	}
	flags := make(map[models.Slot]bool, len(recs))
	for _, r := range recs {
		flags[r.Slot] = r.Occupied
	}

	s.mu.Lock()
	s.flags = flags
	s.mu.Unlock()
	return nil
}

// Get returns the flag for slot, false if no record exists.
func (s *OccupancyStore) Get(slot models.Slot) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[slot]
}

// Set upserts the flag. The backend is written first; on failure the view is
// left untouched and the error wraps ErrStorageFailure.
func (s *OccupancyStore) Set(ctx context.Context, slot models.Slot, occupied bool) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.Upsert(ctx, repositories.OccupancyRecord{Slot: slot, Occupied: occupied}); err != nil {
		return wrapStorage(fmt.Sprintf("set occupancy %s", slot), err)
	}

	s.mu.Lock()
	s.flags[slot] = occupied
	s.mu.Unlock()
	return nil
}

// ListOccupied returns the occupied slot numbers of kind, ascending.
func (s *OccupancyStore) ListOccupied(kind models.Kind) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int, 0)
	for slot, occupied := range s.flags {
		if occupied && slot.Kind == kind {
			out = append(out, slot.Number)
		}
	}
	sort.Ints(out)
	return out
}

// Flags copies the whole view.
func (s *OccupancyStore) Flags() map[models.Slot]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[models.Slot]bool, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out
}

// wrapStorage tags err as ErrStorageFailure unless it already is one.
func wrapStorage(op string, err error) error {
	if errors.Is(err, orderdomain.ErrStorageFailure) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", orderdomain.ErrStorageFailure, op, err)
}
