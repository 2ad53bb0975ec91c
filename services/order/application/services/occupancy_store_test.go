package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderdomain "github.com/ghuser/tablepos/services/order/domain"
	"github.com/ghuser/tablepos/services/order/domain/models"
	"github.com/ghuser/tablepos/services/order/domain/repositories"
	"github.com/ghuser/tablepos/services/order/infrastructure/persistence/memory"
)

type failingLoadBackend struct {
	*memory.OccupancyBackend
	err error
}

func (b failingLoadBackend) Load(context.Context) ([]repositories.OccupancyRecord, error) {
	return nil, b.err
}

func TestOccupancyStore_DefaultsToFree(t *testing.T) {
	s := NewOccupancyStore(memory.NewOccupancyBackend())
	require.NoError(t, s.Init(context.Background()))

	assert.False(t, s.Get(models.Slot{Kind: models.KindDineIn, Number: 1}))
	assert.Empty(t, s.ListOccupied(models.KindDineIn))
}

func TestOccupancyStore_SetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewOccupancyBackend()
	s := NewOccupancyStore(backend)
	t4 := models.Slot{Kind: models.KindDineIn, Number: 4}

	require.NoError(t, s.Set(ctx, t4, true))
	require.NoError(t, s.Set(ctx, t4, true))

	assert.True(t, s.Get(t4))
	recs, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestOccupancyStore_FailedSetLeavesViewUntouched(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewOccupancyBackend()
	s := NewOccupancyStore(backend)
	t2 := models.Slot{Kind: models.KindDineIn, Number: 2}

	backend.FailNext(errors.New("disk full"))
	err := s.Set(ctx, t2, true)

	require.Error(t, err)
	assert.ErrorIs(t, err, orderdomain.ErrStorageFailure)
	assert.False(t, s.Get(t2), "view must not show a write the backend rejected")
}

func TestOccupancyStore_InitLoadsBackend(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewOccupancyBackend()
	for _, rec := range []repositories.OccupancyRecord{
		{Slot: models.Slot{Kind: models.KindDineIn, Number: 5}, Occupied: true},
		{Slot: models.Slot{Kind: models.KindDineIn, Number: 1}, Occupied: true},
		{Slot: models.Slot{Kind: models.KindDineIn, Number: 3}, Occupied: false},
		{Slot: models.Slot{Kind: models.KindTakeaway, Number: 2}, Occupied: true},
	} {
		require.NoError(t, backend.Upsert(ctx, rec))
	}

	s := NewOccupancyStore(backend)
	require.NoError(t, s.Init(ctx))

	assert.Equal(t, []int{1, 5}, s.ListOccupied(models.KindDineIn))
	assert.Equal(t, []int{2}, s.ListOccupied(models.KindTakeaway))
	assert.Len(t, s.Flags(), 4)
}

func TestOccupancyStore_InitFailure(t *testing.T) {
	s := NewOccupancyStore(failingLoadBackend{memory.NewOccupancyBackend(), errors.New("timeout")})
	err := s.Init(context.Background())
	assert.ErrorIs(t, err, orderdomain.ErrStorageFailure)
}
